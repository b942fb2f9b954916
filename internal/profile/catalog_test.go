package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slicehub/slicehub/internal/domain"
)

func TestPathFormatsLayerHeightWithoutTrailingZeros(t *testing.T) {
	c := New("configs")
	require.Equal(t, filepath.Join("configs", "FDM_0.2mm.ini"), c.Path(domain.FDM, 0.2))
	require.Equal(t, filepath.Join("configs", "SLA_0.025mm.ini"), c.Path(domain.SLA, 0.025))
}

func TestResolveMissingProfile(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.Resolve(domain.FDM, 0.2)
	require.ErrorIs(t, err, ErrProfileMissing)
}

func TestResolveInvalidProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FDM_0.2mm.ini")
	require.NoError(t, os.WriteFile(path, []byte("[unterminated section\nkey=value"), 0o644))

	c := New(dir)
	_, err := c.Resolve(domain.FDM, 0.2)
	require.ErrorIs(t, err, ErrProfileInvalid)
}

func TestResolveValidProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FDM_0.2mm.ini")
	require.NoError(t, os.WriteFile(path, []byte("layer_height = 0.2\n"), 0o644))

	c := New(dir)
	resolved, err := c.Resolve(domain.FDM, 0.2)
	require.NoError(t, err)
	require.Equal(t, path, resolved)
}
