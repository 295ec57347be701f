package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

func sampleBuild() entity.SavedBuild {
	return entity.SavedBuild{
		ID:     "abc",
		UserID: "u1",
		Build: entity.BuildRecommendation{
			CPUs:         entity.Component{Name: "Ryzen 5 5600", PriceCAD: "$140", Justification: "fast"},
			GPUs:         entity.Component{Name: "RX 6650 XT", PriceCAD: "$320"},
			RAM:          entity.Component{Name: "16GB", PriceCAD: "$55"},
			Motherboards: entity.Component{Name: "B550", PriceCAD: "$160"},
			Storage:      entity.Component{Name: "1TB", PriceCAD: "$75"},
			PowerSupply:  entity.Component{Name: "650W", PriceCAD: "$95"},
			Case:         entity.Component{Name: "Air 903", PriceCAD: "$90"},
			Cooling:      entity.Component{Name: "Peerless Assassin", PriceCAD: "$50"},
			Input: &entity.BuildRequest{
				Budget:            1000,
				MinFps:            56,
				GamesList:         []string{"Fortnite", "CS2"},
				DisplayResolution: "1080p",
				GraphicalQuality:  "Standard",
				PreOwnedHardware:  []entity.PreOwnedPart{{Type: "GPU", Name: "RTX 3070"}},
			},
		},
	}
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(sampleBuild())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(buildSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1+len(entity.Categories)+1)
	assert.Equal(t, []string{"Category", "Part", "Price (CAD)", "Justification"}, rows[0])
	assert.Equal(t, []string{"CPUs", "Ryzen 5 5600", "$140", "fast"}, rows[1])
	assert.Equal(t, "Power Supply", rows[6][0])
	assert.Equal(t, "Total", rows[9][0])
	assert.Equal(t, "985", rows[9][2])

	req, err := f.GetRows(requirementsSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Games", "Fortnite, CS2"}, req[3])
	assert.Equal(t, []string{"Pre-owned GPU", "RTX 3070"}, req[6])
}

func TestBuildXLSX_WithoutInput(t *testing.T) {
	b := sampleBuild()
	b.Build.Input = nil
	data, err := BuildXLSX(b)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{buildSheet}, f.GetSheetList())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "build_abc.xlsx", FileName(sampleBuild()))
	assert.Equal(t, "build_draft.xlsx", FileName(entity.SavedBuild{}))
}
