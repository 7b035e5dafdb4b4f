// Package utils holds the CLI plumbing shared by commands: a Viper-backed ConfigurationLoader
// and a zap LoggerFactory.
package utils
