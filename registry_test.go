package strata

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestOnlyUnit struct{}

func (requestOnlyUnit) ProcessRequest(req *Request) (*Response, error) { return nil, nil }

type responseOnlyUnit struct{}

func (responseOnlyUnit) ProcessResponse(req *Request, resp *Response) (*Response, error) {
	return resp, nil
}

type noHooksUnit struct{}

func TestBuildRegistryPreservesOrder(t *testing.T) {
	factories := []NamedFactory{
		{Name: "first", New: func() (Unit, error) { return requestOnlyUnit{}, nil }},
		{Name: "second", New: func() (Unit, error) { return responseOnlyUnit{}, nil }},
		{Name: "third", New: func() (Unit, error) { return requestOnlyUnit{}, nil }},
	}
	reg, err := BuildRegistry(factories)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, reg.Names())
	assert.Equal(t, 3, reg.Len())
}

func TestBuildRegistryOmitsNotUsed(t *testing.T) {
	var constructed []string
	factories := []NamedFactory{
		{Name: "A", New: func() (Unit, error) {
			constructed = append(constructed, "A")
			return requestOnlyUnit{}, nil
		}},
		{Name: "D", New: func() (Unit, error) {
			return nil, fmt.Errorf("geoip database unavailable: %w", ErrNotUsed)
		}},
		{Name: "B", New: func() (Unit, error) {
			constructed = append(constructed, "B")
			return responseOnlyUnit{}, nil
		}},
	}
	reg, err := BuildRegistry(factories, WithDebug(true))
	require.NoError(t, err)

	// D opted out: chain is one shorter and D appears in no phase.
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"A", "B"}, reg.Names())
	assert.NotContains(t, reg.Names(), "D")
	assert.Equal(t, []string{"A", "B"}, constructed)
}

func TestBuildRegistryConstructionFailureIsFatal(t *testing.T) {
	cause := errors.New("missing secret")
	factories := []NamedFactory{
		{Name: "ok", New: func() (Unit, error) { return requestOnlyUnit{}, nil }},
		{Name: "broken", New: func() (Unit, error) { return nil, cause }},
	}
	reg, err := BuildRegistry(factories)

	// No partial registry is ever exposed.
	require.Nil(t, reg)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "broken", cerr.Unit)
	assert.ErrorIs(t, err, cause)
}

func TestBuildRegistryNilUnitIsFatal(t *testing.T) {
	factories := []NamedFactory{
		{Name: "nil", New: func() (Unit, error) { return nil, nil }},
	}
	_, err := BuildRegistry(factories)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
}

func TestCapabilitiesProbedOnce(t *testing.T) {
	assert.Equal(t, capRequest, capabilitiesOf(requestOnlyUnit{}))
	assert.Equal(t, capResponse, capabilitiesOf(responseOnlyUnit{}))
	assert.Equal(t, capability(0), capabilitiesOf(noHooksUnit{}))

	full := &testUnit{}
	caps := capabilitiesOf(full)
	assert.Equal(t, capRequest|capView|capException|capTemplate|capResponse, caps)
}

func TestFactoriesFromNames(t *testing.T) {
	lookup := map[string]Factory{
		"requestid": func() (Unit, error) { return requestOnlyUnit{}, nil },
		"gzip":      func() (Unit, error) { return responseOnlyUnit{}, nil },
	}

	factories, err := FactoriesFromNames([]string{"gzip", "requestid"}, lookup)
	require.NoError(t, err)
	require.Len(t, factories, 2)
	// Configuration order is registry order.
	assert.Equal(t, "gzip", factories[0].Name)
	assert.Equal(t, "requestid", factories[1].Name)

	_, err = FactoriesFromNames([]string{"unknown"}, lookup)
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unknown", cerr.Unit)
}

func TestOmittedUnitNeverAppearsInAnyPhase(t *testing.T) {
	var trace []string
	a := &testUnit{name: "A", trace: &trace}
	factories := []NamedFactory{
		{Name: "A", New: func() (Unit, error) { return a, nil }},
		{Name: "D", New: func() (Unit, error) { return nil, ErrNotUsed }},
	}
	reg, err := BuildRegistry(factories)
	require.NoError(t, err)
	chain := NewChain(reg)
	require.Equal(t, 1, chain.Len())

	_, err = chain.Dispatch(NewRequest(http.MethodGet, "/"), okView(&trace))
	require.NoError(t, err)
	for _, call := range trace {
		assert.NotContains(t, call, "D.")
	}
}
