// internal/theme/theme_test.go
package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/storage"
	"riverside-client/internal/view/viewfakes"
)

// ==========================
// Test Helper Functions
// ==========================

type themeFixture struct {
	manager *Manager
	backend *storage.MemoryStore
	root    *viewfakes.Element
	toggle  *viewfakes.Element
}

func createTestManager(t *testing.T) *themeFixture {
	backend := storage.NewMemory()
	root := viewfakes.NewElement()
	toggle := viewfakes.NewElement()
	cfg := config.Default().Session
	return &themeFixture{
		manager: NewManager(backend, cfg, logger.NewTestLogger(t), root, toggle),
		backend: backend,
		root:    root,
		toggle:  toggle,
	}
}

// ==========================
// Init Tests
// ==========================

func TestManager_Init_DefaultsToDark(t *testing.T) {
	f := createTestManager(t)

	f.manager.Init(context.Background())

	assert.Equal(t, ThemeDark, f.manager.Current())
	assert.False(t, f.root.HasClass("light-theme"))
}

func TestManager_Init_AppliesStoredLight(t *testing.T) {
	f := createTestManager(t)
	ctx := context.Background()
	require.NoError(t, f.backend.Set(ctx, config.Default().Session.ThemeKey, ThemeLight))

	f.manager.Init(ctx)

	assert.Equal(t, ThemeLight, f.manager.Current())
	assert.True(t, f.root.HasClass("light-theme"))
}

func TestManager_Init_UnknownStoredValueFallsBack(t *testing.T) {
	f := createTestManager(t)
	ctx := context.Background()
	require.NoError(t, f.backend.Set(ctx, config.Default().Session.ThemeKey, "sepia"))

	f.manager.Init(ctx)

	assert.Equal(t, ThemeDark, f.manager.Current())
}

// ==========================
// Toggle Tests
// ==========================

func TestManager_Toggle_FlipsAndPersists(t *testing.T) {
	f := createTestManager(t)
	ctx := context.Background()
	f.manager.Init(ctx)

	f.manager.Toggle(ctx)
	assert.Equal(t, ThemeLight, f.manager.Current())
	assert.True(t, f.root.HasClass("light-theme"))

	stored, err := f.backend.Get(ctx, config.Default().Session.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, stored)

	f.manager.Toggle(ctx)
	assert.Equal(t, ThemeDark, f.manager.Current())
	assert.False(t, f.root.HasClass("light-theme"))

	stored, err = f.backend.Get(ctx, config.Default().Session.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, stored)
}

func TestManager_Toggle_WriteFailureStillFlips(t *testing.T) {
	f := createTestManager(t)
	ctx := context.Background()
	f.manager.Init(ctx)
	f.backend.FailNextWrites(-1, errors.New("quota exceeded"))

	f.manager.Toggle(ctx)

	assert.Equal(t, ThemeLight, f.manager.Current())
	assert.True(t, f.root.HasClass("light-theme"))
}
