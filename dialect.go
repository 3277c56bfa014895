package protocol

import (
	"strings"

	"github.com/zero-day-ai/protocol/codec"
	"github.com/zero-day-ai/protocol/document"
)

// Dialect is the policy of one wire protocol variant. Dialects are plain
// values; a variant is built by copying one and changing fields.
type Dialect struct {
	// Name identifies the dialect in logs and telemetry.
	Name string

	Format codec.Format

	// ResultWrapper reports whether successful query responses wrap the
	// output in an <Operation>Result element.
	ResultWrapper bool

	// EC2Names selects the EC2 request parameter naming.
	EC2Names bool

	// JSONVersion is the version of the JSON protocol, "1.0" or "1.1".
	JSONVersion string

	ErrorRoot    ErrorRootExtractor
	ResolveCode  CodeResolver
	ExtractError MessageExtractor
}

// Dialects understood by the engine.
var (
	// Query is the form-encoded protocol with XML responses.
	Query = Dialect{
		Name:          "query",
		Format:        codec.FormatXML,
		ResultWrapper: true,
		ErrorRoot:     StandardErrorRoot,
		ResolveCode:   ResolveErrorCode("", "Code"),
		ExtractError:  FieldMessage("Message"),
	}

	// EC2 is the query dialect used by EC2: no result wrapper, errors under
	// Response/Errors/Error and EC2 parameter naming.
	EC2 = Dialect{
		Name:         "ec2",
		Format:       codec.FormatXML,
		EC2Names:     true,
		ErrorRoot:    EC2ErrorRoot,
		ResolveCode:  ResolveErrorCode("", "Code"),
		ExtractError: FieldMessage("Message"),
	}

	// JSON10 is version 1.0 of the JSON protocol.
	JSON10 = jsonDialect("1.0")

	// JSON11 is version 1.1 of the JSON protocol.
	JSON11 = jsonDialect("1.1")
)

func jsonDialect(version string) Dialect {
	return Dialect{
		Name:         "json" + version,
		Format:       codec.FormatJSON,
		JSONVersion:  version,
		ErrorRoot:    DocumentErrorRoot,
		ResolveCode:  ResolveErrorCode("X-Amzn-ErrorType", "__type", "code"),
		ExtractError: JSONMessage,
	}
}

// QueryCompatible returns a copy of d whose error code is read from the
// x-amzn-query-error header first. JSON services migrated from the query
// protocol send the legacy query code there.
func (d Dialect) QueryCompatible() Dialect {
	next := d.resolveCode()
	header := ResolveErrorCode("X-Amzn-Query-Error")
	d.ResolveCode = func(resp *RawResponse, root *document.Node) string {
		if resp != nil && resp.Header.Get("X-Amzn-Query-Error") != "" {
			return header(resp, root)
		}
		return next(resp, root)
	}
	d.Name += "+query"
	return d
}

// IsJSON reports whether the dialect speaks the JSON protocol.
func (d Dialect) IsJSON() bool {
	return d.Format == codec.FormatJSON
}

// ContentType returns the content type of request bodies.
func (d Dialect) ContentType() string {
	if d.IsJSON() {
		return "application/x-amz-json-" + d.jsonVersion()
	}
	return "application/x-www-form-urlencoded; charset=utf-8"
}

func (d Dialect) jsonVersion() string {
	if d.JSONVersion == "" {
		return "1.0"
	}
	return d.JSONVersion
}

func (d Dialect) parse(body []byte) (*document.Node, error) {
	if d.IsJSON() {
		return document.ParseJSON(body)
	}
	return document.ParseXML(body)
}

func (d Dialect) errorRoot(doc *document.Node) *document.Node {
	if d.ErrorRoot == nil {
		return nil
	}
	return d.ErrorRoot(doc)
}

func (d Dialect) resolveCode() CodeResolver {
	if d.ResolveCode != nil {
		return d.ResolveCode
	}
	if d.IsJSON() {
		return JSON10.ResolveCode
	}
	return Query.ResolveCode
}

func (d Dialect) message(resp *RawResponse, root *document.Node) string {
	if d.ExtractError == nil {
		return strings.TrimSpace(root.Child("Message").Value())
	}
	return d.ExtractError(resp, root)
}

func (d Dialect) validate() error {
	if d.Name == "" {
		return ErrInvalidConfig
	}
	if d.IsJSON() && d.jsonVersion() != "1.0" && d.jsonVersion() != "1.1" {
		return ErrInvalidConfig
	}
	return nil
}
