// Package document turns a folder's markdown document into a platform-neutral article.
//
// Optional front matter (YAML, TOML or JSON) supplies post settings such as tags,
// the canonical URL and the published flag. The title is taken from front matter,
// otherwise from the leading level-one heading found in the goldmark AST.
package document
