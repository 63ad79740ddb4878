package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/winevat/winevat/internal/logging"
)

func testLogger() logging.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore emulates reg.exe over an in-memory key/value map so add and
// query can round-trip without a wine prefix.
type fakeStore struct {
	values map[string]storedValue // keyed by "key\x00name"
	calls  [][]string
	err    error
}

type storedValue struct {
	typ  ValueType
	data string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]storedValue)}
}

func (f *fakeStore) RunCollected(_ context.Context, args []string, _ map[string]string) (string, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return "", f.err
	}
	switch args[1] {
	case "add":
		f.values[args[2]+"\x00"+args[4]] = storedValue{typ: ValueType(args[6]), data: args[8]}
		return "The operation completed successfully.\n", nil
	case "query":
		key, name := args[2], args[4]
		sv, ok := f.values[key+"\x00"+name]
		if !ok {
			return "", errors.New("exit status 1")
		}
		return fmt.Sprintf("\n%s\n    %s    %s    %s\n\n", key, name, sv.typ, sv.data), nil
	}
	return "", errors.New("unexpected invocation")
}

func TestAddQueryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  ValueType
		data string
	}{
		{"string", TypeString, "hello"},
		{"dword", TypeDWord, "0x98"},
		{"qword", TypeQWord, "0x1122334455667788"},
		{"binary", TypeBinary, "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			c := NewClient(store, testLogger(), nil)
			ctx := context.Background()

			key := `HKCU\Software\Winevat`
			if err := c.Add(ctx, key, "TestValue", tt.typ, tt.data); err != nil {
				t.Fatalf("Add: %v", err)
			}
			got, ok := c.Query(ctx, key, "TestValue", tt.typ)
			if !ok {
				t.Fatal("Query: value reported absent after Add")
			}
			if got != tt.data {
				t.Errorf("Query = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestQueryFailureReportsAbsent(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("exit status 1")
	c := NewClient(store, testLogger(), nil)

	got, ok := c.Query(context.Background(), `HKCU\Missing`, "Nope", TypeString)
	if ok || got != "" {
		t.Errorf("Query = (%q, %v), want (\"\", false)", got, ok)
	}
}

func TestQueryAbsentValue(t *testing.T) {
	store := newFakeStore()
	c := NewClient(store, testLogger(), nil)

	if _, ok := c.Query(context.Background(), `HKCU\Software`, "Missing", TypeDWord); ok {
		t.Error("Query reported a value that was never added")
	}
}

func TestAddArguments(t *testing.T) {
	store := newFakeStore()
	c := NewClient(store, testLogger(), nil)

	if err := c.Add(context.Background(), `HKCU\Software\Winevat`, "Mode", TypeDWord, "1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := []string{"reg", "add", `HKCU\Software\Winevat`, "-v", "Mode", "-t", "REG_DWORD", "-d", "1", "-f"}
	got := store.calls[0]
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestAddFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("exit status 1")
	c := NewClient(store, testLogger(), nil)

	if err := c.Add(context.Background(), `HKCU\X`, "Y", TypeString, "z"); err == nil {
		t.Error("expected error from failed add")
	}
}

func TestParseQueryOutputSkipsNoise(t *testing.T) {
	out := "\nHKEY_CURRENT_USER\\Software\\Winevat\n" +
		"    OtherValue    REG_SZ    irrelevant\n" +
		"    Mode    REG_DWORD    0x2\n\n"
	got, ok := parseQueryOutput(out, TypeDWord)
	if !ok || got != "0x2" {
		t.Errorf("parseQueryOutput = (%q, %v)", got, ok)
	}
}

func TestParseDWord(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"0x98", 152, false},
		{"0x0", 0, false},
		{"152", 152, false},
		{"0xffffffff", 4294967295, false},
		{"not-a-number", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDWord(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDWord(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDWord(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
