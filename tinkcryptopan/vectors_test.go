package tinkcryptopan

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/vdparikh/cryptopan"
)

// VectorTestSuite represents the top-level structure of a test vector file
type VectorTestSuite struct {
	Algorithm        string            `json:"algorithm"`
	GeneratorVersion string            `json:"generatorVersion"`
	NumberOfTests    int               `json:"numberOfTests"`
	TestGroups       []VectorTestGroup `json:"testGroups"`
}

// VectorTestGroup represents a group of related tests
type VectorTestGroup struct {
	Type  string           `json:"type"`
	Tests []VectorTestCase `json:"tests"`
}

// VectorTestCase represents a single test case
type VectorTestCase struct {
	TCID       int    `json:"tcId"`
	Comment    string `json:"comment"`
	Key        string `json:"key"` // Hex-encoded
	Address    string `json:"address"`
	Anonymized string `json:"anonymized,omitempty"` // Optional, for valid tests
	Result     string `json:"result"`               // "valid" or "invalid"
}

// TestVectors runs the test vector suite through keyset handles
func TestVectors(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("Failed to register KeyManager: %v", err)
	}

	suite, err := loadVectorTestSuite()
	if err != nil {
		t.Fatalf("Failed to load test vectors: %v", err)
	}
	t.Logf("Running test vectors: %s (version %s)", suite.Algorithm, suite.GeneratorVersion)

	total := 0
	for _, group := range suite.TestGroups {
		total += len(group.Tests)
		t.Run(group.Type, func(t *testing.T) {
			for _, tc := range group.Tests {
				t.Run(fmt.Sprintf("TC%d_%s", tc.TCID, sanitizeTestName(tc.Comment)), func(t *testing.T) {
					switch tc.Result {
					case "valid":
						runValidTest(t, tc)
					case "invalid":
						runInvalidTest(t, tc)
					default:
						t.Fatalf("Unknown result type %q", tc.Result)
					}
				})
			}
		})
	}
	if total != suite.NumberOfTests {
		t.Errorf("Test vector file declares %d tests, found %d", suite.NumberOfTests, total)
	}
}

func runValidTest(t *testing.T, tc VectorTestCase) {
	key, err := hex.DecodeString(tc.Key)
	if err != nil {
		t.Fatalf("Failed to decode key: %v", err)
	}
	handle, err := NewKeysetHandleFromKey(key)
	if err != nil {
		t.Fatalf("NewKeysetHandleFromKey() failed: %v", err)
	}
	primitive, err := New(handle)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	addr := netip.MustParseAddr(tc.Address)
	anon := primitive.Anonymize(addr)
	if anon.Is4() != addr.Is4() {
		t.Errorf("Family not preserved: %s -> %s", addr, anon)
	}
	if tc.Anonymized != "" {
		if want := netip.MustParseAddr(tc.Anonymized); anon != want {
			t.Errorf("Anonymize(%s) = %s, want %s", addr, anon, want)
		}
	}
	if back := primitive.Deanonymize(anon); back != addr {
		t.Errorf("Round-trip failed: %s -> %s -> %s", addr, anon, back)
	}
}

func runInvalidTest(t *testing.T, tc VectorTestCase) {
	key, err := hex.DecodeString(tc.Key)
	if err != nil {
		t.Fatalf("Failed to decode key: %v", err)
	}
	handle, err := NewKeysetHandleFromKey(key)
	if err == nil {
		t.Fatalf("NewKeysetHandleFromKey() accepted a %d byte key", len(key))
	}
	if handle != nil {
		t.Error("Expected nil handle for invalid key")
	}
	var kerr cryptopan.KeyLengthError
	if !errors.As(err, &kerr) || int(kerr) != len(key) {
		t.Errorf("Expected KeyLengthError(%d), got %v", len(key), err)
	}
}

func loadVectorTestSuite() (*VectorTestSuite, error) {
	data, err := os.ReadFile(filepath.Join("testdata", "cryptopan_vectors.json"))
	if err != nil {
		return nil, err
	}

	var suite VectorTestSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	return &suite, nil
}

// sanitizeTestName creates a safe test name from a comment
func sanitizeTestName(comment string) string {
	result := make([]byte, 0, len(comment))
	for _, r := range comment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			result = append(result, byte(r))
		} else {
			result = append(result, '_')
		}
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return string(result)
}
