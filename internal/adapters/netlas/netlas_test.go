// internal/adapters/netlas/netlas_test.go
package netlas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/errors"
	"surfacex/internal/platform/logx"
	"surfacex/internal/testutil"
)

func newTestSource(t *testing.T, handler http.Handler) (*Netlas, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	source, err := New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, logx.NewSilent())
	testutil.AssertNoError(t, err, "source construction")
	return source, server
}

func domainNode(value string) *domain.Node {
	return domain.NewNode(domain.NewEntity(domain.EntityTypeDomain, value), value)
}

func TestNetlas_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, logx.NewSilent())
	testutil.AssertError(t, err, "missing api key rejected")
}

func TestNetlas_DiscoverParsesDirections(t *testing.T) {
	var gotBody countRequest

	source, _ := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, countPath, "count endpoint")
		testutil.AssertEqual(t, r.Header.Get("X-Api-Key"), "test-key", "api key header")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("X-Count-ID", "count-abc")
		w.WriteHeader(http.StatusOK)
		// direcciones con count 0 deben descartarse
		_, _ = w.Write([]byte(
			`{"search_field_id": 4, "search_field": "subdomains", "count": 3, "preview": ["a.example.com"]}` + "\n" +
				`{"search_field_id": 7, "search_field": "dns history", "count": 0, "preview": []}` + "\n" +
				`{"search_field_id": 9, "search_field": "whois by org", "count": 12, "preview": ["Example Corp"]}` + "\n",
		))
	}))

	groups, err := source.Discover(context.Background(), domainNode("example.com"))
	testutil.AssertNoError(t, err, "discover")

	testutil.AssertEqual(t, gotBody.NodeType, "domain", "node_type payload")
	testutil.AssertLen(t, gotBody.NodeValue, 1, "node_value payload")

	testutil.AssertEqual(t, len(groups), 2, "zero-count directions dropped")
	testutil.AssertEqual(t, groups[0].ID, "4", "direction id")
	testutil.AssertEqual(t, groups[0].SearchField, "subdomains", "search field")
	testutil.AssertEqual(t, groups[0].Count, 3, "declared count")
	testutil.AssertLen(t, groups[0].Items, 1, "preview items")
	testutil.AssertEqual(t, groups[1].ID, "9", "second direction id")
}

func TestNetlas_FetchGroupsResultsByType(t *testing.T) {
	source, _ := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case countPath:
			w.Header().Set("X-Count-ID", "count-xyz")
			_, _ = w.Write([]byte(`{"search_field_id": 4, "search_field": "subdomains", "count": 3, "preview": ["a.example.com"]}` + "\n"))
		case resultPath:
			// el count-id de la fase de conteo debe reenviarse
			testutil.AssertEqual(t, r.Header.Get("X-Count-ID"), "count-xyz", "count id forwarded")

			var body resultRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			testutil.AssertEqual(t, body.SearchFieldID, 4, "search field id payload")

			_, _ = w.Write([]byte(
				`{"node_type": "domain", "node_value": ["a.example.com", "b.example.com"], "is_valid": true}` + "\n" +
					`{"node_type": "ip", "node_value": ["1.2.3.4"], "is_valid": true}` + "\n" +
					`{"node_type": "domain", "node_value": ["c.example.com"], "is_valid": true}` + "\n" +
					`{"node_type": "email", "node_value": ["x@example.com"], "is_valid": false}` + "\n",
			))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	node := domainNode("example.com")
	directions, err := source.Discover(context.Background(), node)
	testutil.AssertNoError(t, err, "discover")
	testutil.AssertEqual(t, len(directions), 1, "one direction")

	groups, err := source.Fetch(context.Background(), node, directions[0])
	testutil.AssertNoError(t, err, "fetch")

	// un grupo por tipo; los resultados no válidos se descartan
	testutil.AssertEqual(t, len(groups), 2, "grouped by result type")

	testutil.AssertEqual(t, groups[0].Type, domain.EntityTypeDomain, "first group type")
	testutil.AssertLen(t, groups[0].Items, 3, "domain values merged across lines")
	testutil.AssertEqual(t, groups[1].Type, domain.EntityTypeIP, "second group type")
	testutil.AssertLen(t, groups[1].Items, 1, "ip values")
}

func TestNetlas_DiscoverSkipsUnsupportedTypes(t *testing.T) {
	source, _ := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for unsupported node types")
	}))

	node := domain.NewNode(domain.NewEntity(domain.EntityTypeWhoisField, "registrar: example"), "whois")
	groups, err := source.Discover(context.Background(), node)
	testutil.AssertNoError(t, err, "discover")
	testutil.AssertEqual(t, len(groups), 0, "method does not apply")
}

func TestNetlas_SubdomainsSearchAsDomains(t *testing.T) {
	apiType, ok := apiNodeType(domain.EntityTypeSubdomain)
	testutil.AssertTrue(t, ok, "subdomain searchable")
	testutil.AssertEqual(t, apiType, "domain", "mapped to domain")

	apiType, ok = apiNodeType(domain.EntityTypeMailserver)
	testutil.AssertTrue(t, ok, "mailserver searchable")
	testutil.AssertEqual(t, apiType, "domain", "mapped to domain")

	_, ok = apiNodeType(domain.EntityTypeCertificate)
	testutil.AssertFalse(t, ok, "certificate not in the api vocabulary")
}

func TestNetlas_ServerErrorSurfacesAsSourceError(t *testing.T) {
	source, _ := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "bad api key"}`, http.StatusForbidden)
	}))

	groups, err := source.Discover(context.Background(), domainNode("example.com"))
	testutil.AssertError(t, err, "http error surfaced, never fatal for the engine")
	testutil.AssertTrue(t, errors.Is(err, errors.ErrUnauthorized), "rejected key mapped to sentinel")
	testutil.AssertEqual(t, len(groups), 0, "error body never parsed as directions")
}

func TestNetlas_FetchServerErrorSurfaces(t *testing.T) {
	source, _ := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "boom"}`, http.StatusInternalServerError)
	}))

	group := domain.DiscoveryGroup{ID: "4", SearchField: "subdomains", Count: 3}
	groups, err := source.Fetch(context.Background(), domainNode("example.com"), group)
	testutil.AssertError(t, err, "http error surfaced on the result phase")
	testutil.AssertEqual(t, len(groups), 0, "no groups from an error body")
}
