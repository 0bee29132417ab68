package managers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/managers"
)

func TestUvListInstalledParsesToolHeaders(t *testing.T) {
	r := newFakeRunner()
	r.stub("uv tool list", `black v24.10.0
- black
- blackd
ruff v0.6.0
- ruff
`)

	pkgs, err := managers.NewUv(r).ListInstalled(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []managers.PackageInfo{
		{Name: "black", Version: "24.10.0"},
		{Name: "ruff", Version: "0.6.0"},
	}, pkgs)
}

func TestUvListInstalledIndentedExecutables(t *testing.T) {
	r := newFakeRunner()
	r.stub("uv tool list", "httpie v3.2.2\n    - http\n    - https\n")

	pkgs, err := managers.NewUv(r).ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []managers.PackageInfo{{Name: "httpie", Version: "3.2.2"}}, pkgs)
}

func TestUvListInstalledEmpty(t *testing.T) {
	r := newFakeRunner()
	r.stub("uv tool list", "")

	pkgs, err := managers.NewUv(r).ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestUvUpdateAllUpgradesEverything(t *testing.T) {
	r := newFakeRunner()

	require.NoError(t, managers.NewUv(r).UpdateAll(context.Background()))
	assert.True(t, r.calledWith("uv tool upgrade --all"))
}
