package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slicehub/slicehub/internal/domain"
)

func TestValidateLayerHeightRejectsNonPositive(t *testing.T) {
	err := ValidateLayerHeight(domain.FDM, 0)
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ErrInvalidLayerHeight, pe.Code)
}

func TestValidateLayerHeightRejectsUnsupportedValue(t *testing.T) {
	err := ValidateLayerHeight(domain.FDM, 0.05)
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ErrInvalidLayerHeightForTechnology, pe.Code)
}

func TestValidateLayerHeightAcceptsAllowedValue(t *testing.T) {
	require.NoError(t, ValidateLayerHeight(domain.FDM, 0.2))
	require.NoError(t, ValidateLayerHeight(domain.SLA, 0.025))
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrInvalidLayerHeight:              400,
		ErrInvalidLayerHeightForTechnology: 400,
		ErrModelExceedsBuildVolume:         400,
		ErrInvalidSourceGeometryCode:       400,
		ErrRateLimitExceeded:               429,
		ErrQueueFull:                       503,
		ErrQueueTimeout:                    503,
		ErrInternalProcessingError:         500,
	}
	for code, want := range cases {
		require.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestClassifyByExtension(t *testing.T) {
	require.Equal(t, classMesh, classify(".stl"))
	require.Equal(t, classImage, classify(".PNG"))
	require.Equal(t, classVector, classify(".svg"))
	require.Equal(t, classCAD, classify(".step"))
	require.Equal(t, classUnsupported, classify(".txt"))
}
