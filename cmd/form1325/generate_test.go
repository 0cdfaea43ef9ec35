package main

import (
	"bytes"
	"strings"
	"testing"

	"form1325/internal/rates"
	"form1325/internal/render"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCmd_Parse(t *testing.T) {
	tests := []struct {
		name    string
		cmd     generateCmd
		args    []string
		want    render.Format
		meta    render.Metadata
		warns   int
		errMsg  string
		wantErr error
	}{
		{name: "csv", args: []string{"in.csv", "out.csv"}, want: render.CSV},
		{name: "csv ignores details", cmd: generateCmd{name: "X"}, args: []string{"in.csv", "out.csv"}, want: render.CSV, warns: 1},
		{
			name: "html", cmd: generateCmd{name: "Israel", fileNumber: "42", assetAbroad: "TRUE"},
			args: []string{"in.csv", "out.html"}, want: render.HTML,
			meta: render.Metadata{Name: "Israel", FileNumber: "42", AssetAbroad: true},
		},
		{
			name: "markdown", cmd: generateCmd{name: "Israel", fileNumber: "42", assetAbroad: "False"},
			args: []string{"in.csv", "out.md"}, want: render.Markdown,
			meta: render.Metadata{Name: "Israel", FileNumber: "42"},
		},
		{name: "missing details", cmd: generateCmd{name: "Israel"}, args: []string{"in.csv", "out.html"}, wantErr: errMissingMetadata, errMsg: "-file-number, -asset-abroad"},
		{name: "bad asset abroad", cmd: generateCmd{name: "I", fileNumber: "1", assetAbroad: "yes"}, args: []string{"in.csv", "out.md"}, errMsg: "must be true or false"},
		{
			name: "pdf", cmd: generateCmd{name: "Israel", fileNumber: "42", assetAbroad: "true"},
			args: []string{"in.csv", "out.pdf"}, want: render.PDF,
			meta: render.Metadata{Name: "Israel", FileNumber: "42", AssetAbroad: true},
		},
		{name: "pdf missing details", args: []string{"in.csv", "out.pdf"}, wantErr: errMissingMetadata},
		{name: "unsupported", args: []string{"in.csv", "out.docx"}, wantErr: render.ErrUnsupportedFormat},
		{name: "missing output", args: []string{"in.csv"}, errMsg: "expected an input and an output path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.cmd.parse(tt.args)

			if tt.wantErr != nil || tt.errMsg != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.format)
			assert.Equal(t, tt.meta, req.meta)
			assert.Len(t, req.warnings, tt.warns)
		})
	}
}

func TestWriteTable(t *testing.T) {
	table := rates.NewTable(2023, "USD", map[string]decimal.Decimal{"2022-12-30": decimal.RequireFromString("3.519")})

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, table))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "day,USD", lines[0])
	assert.Equal(t, "2022-12-29,0", lines[1])
	assert.Equal(t, "2023-01-01,3.519", lines[4])
	assert.Len(t, lines, 369)
}
