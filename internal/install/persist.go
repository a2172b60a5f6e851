package install

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes the top-level blocks of an installations file.
type fileRoot struct {
	Installations []*installationBlock `hcl:"installation,block"`
}

type installationBlock struct {
	Name        string            `hcl:"name,label"`
	Home        string            `hcl:"home"`
	DownloadURL string            `hcl:"download_url,optional"`
	NodeHomes   map[string]string `hcl:"node_homes,optional"`
	Properties  map[string]string `hcl:"properties,optional"`
}

// LoadFile reads an installations HCL file into installation records.
// Homes are laundered on the way in, like any other construction path.
func LoadFile(path string) ([]Installation, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing installations file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding installations file %s: %w", path, diags)
	}

	seen := make(map[string]bool, len(root.Installations))
	out := make([]Installation, 0, len(root.Installations))
	for _, blk := range root.Installations {
		if blk.Name == "" {
			return nil, fmt.Errorf("installations file %s: installation with empty name", path)
		}
		if seen[blk.Name] {
			return nil, fmt.Errorf("installations file %s: duplicate installation %q", path, blk.Name)
		}
		seen[blk.Name] = true

		out = append(out, New(blk.Name, blk.Home,
			WithNodeHomes(blk.NodeHomes),
			WithProperties(blk.Properties),
			WithDownloadURL(blk.DownloadURL),
		))
	}
	return out, nil
}

// SaveFile writes the installation array back out as HCL, the inverse of
// LoadFile.
func SaveFile(path string, installations []Installation) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for _, inst := range installations {
		block := body.AppendNewBlock("installation", []string{inst.Name})
		blockBody := block.Body()
		blockBody.SetAttributeValue("home", cty.StringVal(inst.Home))
		if inst.DownloadURL != "" {
			blockBody.SetAttributeValue("download_url", cty.StringVal(inst.DownloadURL))
		}
		if len(inst.NodeHomes) > 0 {
			blockBody.SetAttributeValue("node_homes", stringMapVal(inst.NodeHomes))
		}
		if len(inst.Properties) > 0 {
			blockBody.SetAttributeValue("properties", stringMapVal(inst.Properties))
		}
		body.AppendNewline()
	}

	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing installations file %s: %w", path, err)
	}
	return nil
}

func stringMapVal(m map[string]string) cty.Value {
	vals := make(map[string]cty.Value, len(m))
	for k, v := range m {
		vals[k] = cty.StringVal(v)
	}
	return cty.MapVal(vals)
}
