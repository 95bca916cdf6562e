package output

import (
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// YAMLFormatter prints replies as YAML documents. Map entries keep their
// wire order.
type YAMLFormatter struct{}

// Format writes v as one YAML document.
func (f *YAMLFormatter) Format(w io.Writer, v resp.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(v)); err != nil {
		return err
	}
	return enc.Close()
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func yamlNode(v resp.Value) *yaml.Node {
	switch v.Kind() {
	case resp.KindSimpleString, resp.KindBulkString:
		return scalar("!!str", v.Str())
	case resp.KindError:
		return &yaml.Node{
			Kind:    yaml.MappingNode,
			Tag:     "!!map",
			Content: []*yaml.Node{scalar("!!str", "error"), scalar("!!str", v.Str())},
		}
	case resp.KindInteger:
		return scalar("!!int", strconv.FormatInt(v.Int(), 10))
	case resp.KindBoolean:
		return scalar("!!bool", strconv.FormatBool(v.Bool()))
	case resp.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Elems() {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	case resp.KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range v.Pairs() {
			n.Content = append(n.Content, yamlNode(p.Key), yamlNode(p.Value))
		}
		return n
	default:
		return scalar("!!null", "null")
	}
}
