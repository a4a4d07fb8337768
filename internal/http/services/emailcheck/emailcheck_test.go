package emailcheck

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	records map[string][]*net.MX
	errs    map[string]error
	calls   map[string]int
}

func (f *fakeResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	if mx, ok := f.records[name]; ok {
		return mx, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func TestCheck(t *testing.T) {
	r := &fakeResolver{
		records: map[string][]*net.MX{"romero.mx": {{Host: "mx.romero.mx.", Pref: 10}}},
		errs:    map[string]error{"lento.mx": errors.New("i/o timeout")},
	}
	c := New(r, Config{Timeout: time.Second})
	ctx := context.Background()

	_, err := c.Check(ctx, "  ")
	require.ErrorIs(t, err, ErrMissingEmail)

	tests := []struct {
		email string
		valid bool
		msg   string
	}{
		{"ana@romero.mx", true, MsgValid},
		{"ana@ROMERO.MX", true, MsgValid},
		{"ana romero@romero.mx", false, MsgBadFormat},
		{"ana@sin-punto", false, MsgBadFormat},
		{"ana@no-existe.mx", false, MsgNoMX},
		{"ana@lento.mx", false, MsgUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			res, err := c.Check(ctx, tt.email)
			require.NoError(t, err)
			require.Equal(t, tt.valid, res.Valid)
			require.Equal(t, tt.msg, res.Message)
		})
	}
}

func TestCheck_CachesByDomain(t *testing.T) {
	r := &fakeResolver{
		records: map[string][]*net.MX{"romero.mx": {{Host: "mx.romero.mx."}}},
		errs:    map[string]error{"lento.mx": errors.New("i/o timeout")},
	}
	c := New(r, Config{})
	ctx := context.Background()

	for _, e := range []string{"a@romero.mx", "b@romero.mx", "c@no-existe.mx", "d@no-existe.mx", "e@lento.mx", "f@lento.mx"} {
		_, err := c.Check(ctx, e)
		require.NoError(t, err)
	}
	require.Equal(t, 1, r.calls["romero.mx"])
	require.Equal(t, 1, r.calls["no-existe.mx"])
	require.Equal(t, 2, r.calls["lento.mx"], "los fallos transitorios no se cachean")
}
