package managers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tether-cli/tether/pkg/managers"
)

func TestBunListInstalledParsesTree(t *testing.T) {
	r := newFakeRunner()
	r.stub("bun pm ls -g", `/home/u/.bun/install/global node_modules (2)
├── @google/gemini-cli@0.18.4
└── ts-node@10.9.2
`)

	pkgs, err := managers.NewBun(r).ListInstalled(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []managers.PackageInfo{
		{Name: "@google/gemini-cli", Version: "0.18.4"},
		{Name: "ts-node", Version: "10.9.2"},
	}, pkgs)
}

func TestBunListInstalledNoGlobalPackagesYet(t *testing.T) {
	r := newFakeRunner()
	r.stubFailure("bun pm ls -g", "error: No package.json was found", 1)

	pkgs, err := managers.NewBun(r).ListInstalled(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestBunListInstalledOtherFailurePropagates(t *testing.T) {
	r := newFakeRunner()
	r.stubFailure("bun pm ls -g", "error: something else broke", 1)

	_, err := managers.NewBun(r).ListInstalled(context.Background())
	assert.Error(t, err)
}

func TestBunListSkipsMalformedEntries(t *testing.T) {
	r := newFakeRunner()
	r.stub("bun pm ls -g", `/home/u/.bun/install/global node_modules (3)
├── @
├── typescript@5.3.3
│
└── prettier
`)

	pkgs, err := managers.NewBun(r).ListInstalled(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []managers.PackageInfo{
		{Name: "prettier"},
		{Name: "typescript", Version: "5.3.3"},
	}, pkgs)
}

func TestSplitPackageSpec(t *testing.T) {
	tests := []struct {
		name        string
		spec        string
		wantName    string
		wantVersion string
	}{
		{name: "simple", spec: "typescript@5.3.3", wantName: "typescript", wantVersion: "5.3.3"},
		{name: "scoped", spec: "@google/gemini-cli@0.18.4", wantName: "@google/gemini-cli", wantVersion: "0.18.4"},
		{name: "scoped_deep", spec: "@angular/cli@17.0.0", wantName: "@angular/cli", wantVersion: "17.0.0"},
		{name: "no_version", spec: "typescript", wantName: "typescript", wantVersion: ""},
		{name: "scoped_no_version", spec: "@types/node", wantName: "@types/node", wantVersion: ""},
		{name: "bare_at", spec: "@", wantName: "@", wantVersion: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version := managers.SplitPackageSpec(tt.spec)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantVersion, version)
		})
	}
}

func TestBunUpdateAllReaddsEachPackage(t *testing.T) {
	r := newFakeRunner()
	r.stub("bun pm ls -g", `/home/u/.bun/install/global node_modules (3)
├── eslint@8.57.0
├── prettier@3.2.5
└── typescript@5.3.3
`)
	r.stubFailure("bun add -g prettier", "error: registry unreachable", 1)

	require.NoError(t, managers.NewBun(r).UpdateAll(context.Background()))

	// The failed package is logged and skipped; the rest still update.
	assert.True(t, r.calledWith("bun add -g eslint"))
	assert.True(t, r.calledWith("bun add -g prettier"))
	assert.True(t, r.calledWith("bun add -g typescript"))
}

func TestBunInstallUsesSpec(t *testing.T) {
	r := newFakeRunner()
	a := managers.NewBun(r)

	require.NoError(t, a.Install(context.Background(), managers.PackageInfo{Name: "ts-node", Version: "10.9.2"}))
	assert.True(t, r.calledWith("bun add -g ts-node@10.9.2"))

	require.NoError(t, a.Install(context.Background(), managers.PackageInfo{Name: "prettier"}))
	assert.True(t, r.calledWith("bun add -g prettier"))
}
