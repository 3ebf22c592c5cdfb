package uniast_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gerunddev/uniast/reference"
	"github.com/gerunddev/uniast/uniast"
)

func sampleDocument() *uniast.UniAst {
	width := 120.5
	return &uniast.UniAst{Blocks: []uniast.Block{
		&uniast.Heading{
			Level:   2,
			Content: []uniast.InlineContent{&uniast.Text{Content: "Title", Styles: uniast.TextStyles{Bold: true}}},
			Styles:  uniast.BlockStyles{TextAlignment: uniast.AlignCenter},
		},
		&uniast.Paragraph{Content: []uniast.InlineContent{
			&uniast.Text{Content: "see "},
			&uniast.Link{
				Content: []uniast.Text{{Content: "home"}},
				Target: &uniast.InternalTarget{
					RawReference: "Main.WebHome",
					ParsedReference: &reference.Reference{
						Kind:   reference.Document,
						Spaces: []string{"Main"},
						Page:   "WebHome",
						Key:    "Main.WebHome",
					},
				},
			},
			&uniast.InlineImage{Target: &uniast.InternalTarget{RawReference: "missing.png"}, Alt: "pic"},
			&uniast.InlineMacro{Name: "icon", Params: uniast.Params{"name": "star"}},
		}},
		&uniast.List{Items: []uniast.ListItem{
			{Number: uniast.Int(3), Content: []uniast.Block{&uniast.Code{Content: "x := 1", Language: "go"}}},
			{Checked: uniast.Bool(false), Content: []uniast.Block{&uniast.Break{}}},
		}},
		&uniast.Table{
			Columns: []uniast.TableColumn{{
				HeaderCell: uniast.TableCell{Content: []uniast.InlineContent{&uniast.Text{Content: "A"}}},
				WidthPx:    &width,
			}},
			Rows: [][]uniast.TableCell{{
				{Content: []uniast.InlineContent{&uniast.Text{Content: "1"}}, ColSpan: uniast.Int(2)},
			}},
		},
		&uniast.Quote{Content: []uniast.Block{
			&uniast.Image{
				Target:  &uniast.ExternalTarget{URL: "https://example.com/a.png"},
				Caption: "A",
				Styles:  uniast.ImageStyles{Alignment: uniast.AlignRight, WidthPx: 64},
			},
		}},
		&uniast.MacroBlock{Name: "toc", Params: uniast.Params{}},
	}}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, format := range []uniast.Format{uniast.FormatJSON, uniast.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			doc := sampleDocument()

			data, err := uniast.Encode(doc, format)
			require.NoError(t, err)

			decoded, err := uniast.Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, doc, decoded)

			again, err := uniast.Encode(decoded, format)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestStandardMarshalers(t *testing.T) {
	doc := sampleDocument()

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var fromJSON uniast.UniAst
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, doc, &fromJSON)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	var fromYAML uniast.UniAst
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, doc, &fromYAML)
}

func TestEncodedShape(t *testing.T) {
	data, err := uniast.Encode(&uniast.UniAst{Blocks: []uniast.Block{
		&uniast.Paragraph{Content: []uniast.InlineContent{
			&uniast.Link{
				Content: []uniast.Text{{Content: "x"}},
				Target:  &uniast.InternalTarget{RawReference: "P"},
			},
		}},
	}}, uniast.FormatJSON)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	block := v["blocks"].([]any)[0].(map[string]any)
	assert.Equal(t, "paragraph", block["type"])

	link := block["content"].([]any)[0].(map[string]any)
	target := link["target"].(map[string]any)
	assert.Equal(t, "internal", target["type"])
	assert.Contains(t, target, "parsedReference")
	assert.Nil(t, target["parsedReference"])
}

func TestValidateRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing blocks", `{}`},
		{"unknown block", `{"blocks":[{"type":"video"}]}`},
		{"heading level", `{"blocks":[{"type":"heading","level":7,"content":[]}]}`},
		{"macro without name", `{"blocks":[{"type":"macroBlock","name":""}]}`},
		{"numeric macro param", `{"blocks":[{"type":"macroBlock","name":"m","params":{"a":1}}]}`},
		{"link with image content", `{"blocks":[{"type":"paragraph","content":[{"type":"link","content":[{"type":"image","target":{"type":"external","url":"x"}}],"target":{"type":"external","url":"y"}}]}]}`},
		{"unknown style", `{"blocks":[{"type":"paragraph","content":[{"type":"text","content":"x","styles":{"underline":true}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, uniast.Validate([]byte(tt.doc)))

			_, err := uniast.Decode([]byte(tt.doc), uniast.FormatJSON)
			assert.Error(t, err)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	doc, err := uniast.Decode([]byte(strings.TrimSpace(`
blocks:
  - type: paragraph
    content:
      - type: text
        content: hello
        styles: {italic: true}
  - type: macroBlock
    name: info
    params:
      title: Note
`)), uniast.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, &uniast.UniAst{Blocks: []uniast.Block{
		&uniast.Paragraph{Content: []uniast.InlineContent{
			&uniast.Text{Content: "hello", Styles: uniast.TextStyles{Italic: true}},
		}},
		&uniast.MacroBlock{Name: "info", Params: uniast.Params{"title": "Note"}},
	}}, doc)
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]uniast.Format{"json": uniast.FormatJSON, "YAML": uniast.FormatYAML, "yml": uniast.FormatYAML} {
		got, err := uniast.ParseFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := uniast.ParseFormat("toml")
	assert.Error(t, err)

	_, err = uniast.Encode(&uniast.UniAst{}, uniast.Format("toml"))
	assert.Error(t, err)
	_, err = uniast.Decode([]byte("{}"), uniast.Format("toml"))
	assert.Error(t, err)
}
