package protocol

import (
	"fmt"

	"github.com/zero-day-ai/protocol/exception"
	"github.com/zero-day-ai/protocol/model"
)

// DialectFor returns the dialect named by service metadata.
func DialectFor(md model.Metadata) (Dialect, error) {
	switch md.GetProtocol() {
	case model.ProtocolQuery:
		return Query, nil
	case model.ProtocolEC2:
		return EC2, nil
	case model.ProtocolJSON:
		if md.GetJSONVersion() == "1.1" {
			return JSON11, nil
		}
		return JSON10, nil
	}
	return Dialect{}, fmt.Errorf("%w: unknown protocol %q", ErrInvalidConfig, md.Protocol)
}

// NewFactoryFromModel creates a Factory for a loaded service model. The
// dialect, API version, target prefix and service name come from the model
// metadata, and every exception shape is registered under its error code.
// Modeled exceptions unmarshal into a *exception.ServiceException unless
// factories says otherwise; factories is keyed by error code and may be nil.
//
// opts are applied after the model-derived options and may override them.
func NewFactoryFromModel(m *model.Model, factories map[string]exception.Factory, opts ...Option) (*Factory, error) {
	if m == nil {
		return nil, newError("NewFactoryFromModel", KindConfiguration,
			fmt.Errorf("%w: nil model", ErrInvalidConfig))
	}
	dialect, err := DialectFor(m.Metadata)
	if err != nil {
		return nil, newError("NewFactoryFromModel", KindConfiguration, err)
	}

	derived := []Option{
		WithDialect(dialect),
		WithAPIVersion(m.Metadata.APIVersion),
		WithServiceName(m.Metadata.ServiceName),
		WithTargetPrefix(m.Metadata.TargetPrefix),
	}
	for _, s := range m.ExceptionShapes() {
		derived = append(derived, WithException(s.Code(), s, factories[s.Code()]))
	}
	return NewFactory(append(derived, opts...)...)
}
