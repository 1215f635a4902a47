package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryRef(t *testing.T) {
	tests := []struct {
		input string
		want  RepositoryRef
	}{
		{"octocat/hello", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{" octocat/hello ", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"github.com/octocat/hello", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"https://github.com/octocat/hello", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"https://github.com/octocat/hello.git", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"https://github.com/octocat/hello/", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"git@github.com:octocat/hello.git", RepositoryRef{Host: "github.com", Owner: "octocat", Name: "hello"}},
		{"https://ghe.example.com/team/essay", RepositoryRef{Host: "ghe.example.com", Owner: "team", Name: "essay"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepositoryRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRepositoryRef_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"octocat",
		"octocat/hello/extra",
		"/hello",
		"https:///octocat/hello",
		"git@github.com",
		"https://github.com/octocat",
	} {
		_, err := ParseRepositoryRef(input)
		assert.ErrorIs(t, err, ErrInvalidRepositoryRef, input)
	}
}

func TestRepositoryRef_Names(t *testing.T) {
	ref := RepositoryRef{Owner: "octocat", Name: "hello"}

	assert.Equal(t, "octocat/hello", ref.FullName())
	assert.Equal(t, "octocat/hello", ref.String())
	assert.Equal(t, "https://github.com/octocat/hello.git", ref.CloneURL())
	assert.False(t, ref.IsZero())
	assert.True(t, RepositoryRef{}.IsZero())
}

func TestProject_RepositoryRef(t *testing.T) {
	p := &Project{Name: "Essay"}
	_, err := p.RepositoryRef()
	assert.ErrorIs(t, err, ErrProjectNotLinked)
	assert.False(t, p.IsLinked())

	p.Repository = "octocat/essay"
	ref, err := p.RepositoryRef()
	require.NoError(t, err)
	assert.Equal(t, "essay", ref.Name)
}
