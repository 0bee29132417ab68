package managers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/managers"
)

func TestNpmListInstalledExcludesSelf(t *testing.T) {
	r := newFakeRunner()
	r.stub("npm ls -g --depth=0 --json", `{
  "dependencies": {
    "npm": {"version": "10.5.0"},
    "typescript": {"version": "5.3.3"},
    "eslint": {"version": "8.57.0"}
  }
}`)

	pkgs, err := managers.NewNpm(r).ListInstalled(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []managers.PackageInfo{
		{Name: "eslint", Version: "8.57.0"},
		{Name: "typescript", Version: "5.3.3"},
	}, pkgs)
}

func TestNpmListInstalledBadJSON(t *testing.T) {
	r := newFakeRunner()
	r.stub("npm ls -g --depth=0 --json", "not json at all")

	_, err := managers.NewNpm(r).ListInstalled(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrParseFailed))
}

func TestNpmInstallPinsVersion(t *testing.T) {
	r := newFakeRunner()

	require.NoError(t, managers.NewNpm(r).Install(context.Background(), managers.PackageInfo{Name: "typescript", Version: "5.3.3"}))
	assert.True(t, r.calledWith("npm install -g typescript@5.3.3"))
}
