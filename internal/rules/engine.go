// Package rules holds the versioned, immutable rule snapshots the
// qualification, QRE, and credit engines compute against. A snapshot is
// read-only after construction; publishing changed rates requires a new
// version so historical results stay reproducible against their hash.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine exposes lookups over one rule snapshot.
type Engine struct {
	version string
	federal domain.FederalRules
	states  map[string]domain.StateRules
	hash    string
}

// NewEngine builds the engine for the built-in default snapshot.
func NewEngine() *Engine {
	e, err := NewEngineFromSnapshot(DefaultVersion, DefaultFederalRules(), DefaultStateRules())
	if err != nil {
		// The built-in snapshot is static; a hash failure here is a defect.
		panic(err)
	}
	return e
}

// NewEngineFromSnapshot builds an engine over explicit rule content.
func NewEngineFromSnapshot(version string, federal domain.FederalRules, states map[string]domain.StateRules) (*Engine, error) {
	if version == "" {
		return nil, fmt.Errorf("rules version is required")
	}
	hash, err := hashRules(version, federal, states)
	if err != nil {
		return nil, fmt.Errorf("failed to hash rules %s: %w", version, err)
	}
	copied := make(map[string]domain.StateRules, len(states))
	for code, sr := range states {
		copied[code] = sr
	}
	return &Engine{version: version, federal: federal, states: copied, hash: hash}, nil
}

// Version returns the snapshot's version string.
func (e *Engine) Version() string { return e.version }

// Hash returns a stable content hash of the snapshot. Identical rule content
// yields an identical hash; any changed value changes it.
func (e *Engine) Hash() string { return e.hash }

// FederalRules returns the federal rule content.
func (e *Engine) FederalRules() domain.FederalRules { return e.federal }

// StateRules returns a state's rules. The second return is false for unknown
// codes; callers must treat absence (and HasCredit=false) as a valid
// "no credit" outcome, not an error.
func (e *Engine) StateRules(code string) (domain.StateRules, bool) {
	sr, ok := e.states[code]
	return sr, ok
}

// StateCodes lists the configured state codes in sorted order.
func (e *Engine) StateCodes() []string {
	codes := make([]string, 0, len(e.states))
	for code := range e.states {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FourPartTestCriteria returns the four-part test criteria in statutory order.
func (e *Engine) FourPartTestCriteria() []domain.TestCriterion {
	return e.federal.FourPartTest
}

// Criterion returns the criterion for one test element.
func (e *Engine) Criterion(element domain.TestElement) (domain.TestCriterion, bool) {
	for _, c := range e.federal.FourPartTest {
		if c.Element == element {
			return c, true
		}
	}
	return domain.TestCriterion{}, false
}

// ExcludedActivities returns the IRC §41(d)(4) exclusion list.
func (e *Engine) ExcludedActivities() []domain.ExcludedActivity {
	return e.federal.ExcludedActivities
}

// ContractResearchPercentage returns the inclusion rate for contract research
// payments: 75% for qualified research organizations, 65% otherwise.
func (e *Engine) ContractResearchPercentage(isQualifiedOrg bool) decimal.Decimal {
	if isQualifiedOrg {
		return e.federal.QualifiedOrgContractRate
	}
	return e.federal.ContractResearchRate
}

// hashRules produces a sha256 over the canonical JSON of the rule content.
// States are serialized in sorted code order so map iteration order never
// leaks into the hash.
func hashRules(version string, federal domain.FederalRules, states map[string]domain.StateRules) (string, error) {
	codes := make([]string, 0, len(states))
	for code := range states {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	ordered := make([]domain.StateRules, 0, len(codes))
	for _, code := range codes {
		ordered = append(ordered, states[code])
	}
	payload := struct {
		Version string              `json:"version"`
		Federal domain.FederalRules `json:"federal"`
		States  []domain.StateRules `json:"states"`
	}{Version: version, Federal: federal, States: ordered}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Registry is an arena of immutable snapshots keyed by version string. Old
// versions are kept so results stored against them can be recomputed exactly.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
	latest  string
}

// NewRegistry creates a registry seeded with the built-in default snapshot.
func NewRegistry() *Registry {
	r := &Registry{engines: make(map[string]*Engine)}
	def := NewEngine()
	r.engines[def.Version()] = def
	r.latest = def.Version()
	return r
}

// Register adds a snapshot. Re-registering an existing version with different
// content is rejected: past tax-year rules must never be silently mutated.
func (r *Registry) Register(e *Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.engines[e.Version()]; ok {
		if existing.Hash() != e.Hash() {
			return fmt.Errorf("rules version %s already registered with different content; publish a new version instead", e.Version())
		}
		return nil
	}
	r.engines[e.Version()] = e
	if versionLess(r.latest, e.Version()) {
		r.latest = e.Version()
	}
	return nil
}

// versionLess orders version strings by their dot-separated components,
// numerically where both sides parse as integers, so "2024.10" sorts after
// "2024.9". Non-numeric components compare as strings.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				return an < bn
			}
			continue
		}
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

// Get returns the snapshot for a version.
func (r *Registry) Get(version string) (*Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[version]
	return e, ok
}

// Latest returns the highest registered version.
func (r *Registry) Latest() *Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engines[r.latest]
}

// Versions lists registered versions, oldest first.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := make([]string, 0, len(r.engines))
	for v := range r.engines {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versionLess(versions[i], versions[j]) })
	return versions
}
