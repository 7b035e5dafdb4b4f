package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/postsync/internal/repository"
)

func TestCleanPath(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "root_dot", input: ".", expected: ""},
		{name: "empty", input: "", expected: ""},
		{name: "leading_separator", input: "/posts/one/", expected: "posts/one"},
		{name: "redundant_segments", input: "posts//one/./README.md", expected: "posts/one/README.md"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, repository.CleanPath(testCase.input))
		})
	}
}

func TestJoinPathTreatsEmptyFolderAsRoot(testInstance *testing.T) {
	require.Equal(testInstance, "README.md", repository.JoinPath("", "README.md"))
	require.Equal(testInstance, "posts/one/.blogpost/post.json", repository.JoinPath("posts/one", ".blogpost", "post.json"))
}

func TestReferenceWithBranchDoesNotMutate(testInstance *testing.T) {
	reference := repository.Reference{Repository: "octo/blog"}
	branched := reference.WithBranch("main")
	require.Empty(testInstance, reference.Branch)
	require.Equal(testInstance, "main", branched.Branch)
}
