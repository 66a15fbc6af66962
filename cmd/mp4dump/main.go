// Command mp4dump reads an ISOBMFF file and prints its box structure.
package main

import (
	"encoding/json"
	"fmt"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/tetsuo/bmff"
)

// Format specifies the output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// BoxNode is a box in the tree structure, as printed by this command. It
// is a deliberately loose rendering of bmff.Box: enough to see what was
// parsed without re-deriving every field's meaning at the call site.
type BoxNode struct {
	Type     string         `json:"type"`
	UUID     string         `json:"uuid,omitempty"`
	Version  *uint8         `json:"version,omitempty"`
	Flags    *uint32        `json:"flags,omitempty"`
	Info     map[string]any `json:"info,omitempty"`
	RawLen   *int           `json:"rawLength,omitempty"`
	Children []BoxNode      `json:"children,omitempty"`
}

func main() {
	formatFlag := flag.String("format", "text", "output format: text (default), json")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--format=text|json] <file.mp4>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	format := FormatText
	switch strings.ToLower(*formatFlag) {
	case "json":
		format = FormatJSON
	case "text":
		format = FormatText
	default:
		fmt.Fprintf(os.Stderr, "unknown format: %s\n", *formatFlag)
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	boxes, err := bmff.DecodeAll(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	root := make([]BoxNode, len(boxes))
	for i, b := range boxes {
		root[i] = buildNode(b)
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(root); err != nil {
			fmt.Fprintf(os.Stderr, "error encoding output: %v\n", err)
			os.Exit(1)
		}
	default:
		for _, node := range root {
			printNode(node, 0)
		}
	}
}

func buildNode(b *bmff.Box) BoxNode {
	node := BoxNode{Type: b.Type.String()}
	if b.Type == (bmff.BoxType{'u', 'u', 'i', 'd'}) {
		node.UUID = fmt.Sprintf("%x", b.ExtendedType)
	}
	if bmff.IsFullBox(b.Type) {
		v, flags := b.Version, b.Flags
		node.Version = &v
		node.Flags = &flags
	}
	if len(b.Raw) > 0 {
		n := len(b.Raw)
		node.RawLen = &n
	}
	for _, child := range b.Children {
		node.Children = append(node.Children, buildNode(child))
	}
	return node
}

func printNode(node BoxNode, depth int) {
	indent := strings.Repeat("  ", depth)
	extra := ""
	if node.UUID != "" {
		extra = " uuid=" + node.UUID
	}
	if node.Version != nil {
		extra += fmt.Sprintf(" v=%d flags=0x%06x", *node.Version, *node.Flags)
	}
	if node.RawLen != nil {
		extra += fmt.Sprintf(" raw=%dB", *node.RawLen)
	}
	fmt.Printf("%s%s%s\n", indent, node.Type, extra)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
