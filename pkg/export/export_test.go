package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	table := Table{
		Headers: []string{"Room", "Capacity", "Occupancy"},
		Rows: []map[string]string{
			{"Room": "A-101", "Capacity": "2", "Occupancy": "1"},
			{"Room": "B-201", "Capacity": "1", "Occupancy": "1"},
		},
	}
	out, err := CSV(table)
	require.NoError(t, err)
	assert.Equal(t, "Room,Capacity,Occupancy\nA-101,2,1\nB-201,1,1\n", string(out))
}

func TestCSVRequiresHeaders(t *testing.T) {
	_, err := CSV(Table{})
	require.Error(t, err)
}

func TestPDF(t *testing.T) {
	table := Table{
		Headers: []string{"Room", "Occupancy"},
		Rows:    []map[string]string{{"Room": "A-101", "Occupancy": "2/2"}},
	}
	out, err := PDF(table, "Occupancy Report")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
