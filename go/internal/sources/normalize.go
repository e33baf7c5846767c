package sources

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// DefaultTeamAliases identifies the followed club in provider team names
var DefaultTeamAliases = []string{"perth", "glory"}

// TeamMatcher decides whether a provider team name is the followed club
type TeamMatcher struct {
	aliases []string
}

// NewTeamMatcher matches any name containing one of aliases (case-insensitive)
func NewTeamMatcher(aliases ...string) *TeamMatcher {
	if len(aliases) == 0 {
		aliases = DefaultTeamAliases
	}
	lowered := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			lowered = append(lowered, a)
		}
	}
	return &TeamMatcher{aliases: lowered}
}

// Matches reports whether name refers to the followed club
func (m *TeamMatcher) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, a := range m.aliases {
		if strings.Contains(name, a) {
			return true
		}
	}
	return false
}

// FormFiller supplies random results where a provider gives fewer than five.
// It is safe for concurrent use.
type FormFiller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFormFiller seeds a filler; tests pass a fixed seed for reproducible padding
func NewFormFiller(seed uint64) *FormFiller {
	return &FormFiller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomFormFiller seeds from the runtime source
func NewRandomFormFiller() *FormFiller {
	return NewFormFiller(rand.Uint64())
}

var formResults = [...]models.FormResult{models.FormWin, models.FormDraw, models.FormLoss}

// Random picks W, D or L uniformly
func (f *FormFiller) Random() models.FormResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return formResults[f.rng.IntN(len(formResults))]
}

// Normalize returns exactly FormLength valid results: invalid ones are replaced,
// extras beyond the first five are dropped and short sequences are padded.
func (f *FormFiller) Normalize(form []models.FormResult) []models.FormResult {
	out := make([]models.FormResult, 0, models.FormLength)
	for _, r := range form {
		if len(out) == models.FormLength {
			break
		}
		if !r.Valid() {
			r = f.Random()
		}
		out = append(out, r)
	}
	for len(out) < models.FormLength {
		out = append(out, f.Random())
	}
	return out
}

// Normalizer bundles the helpers every adapter needs to produce canonical rows
type Normalizer struct {
	Team  *TeamMatcher
	Form  *FormFiller
	Clock clockwork.Clock
}

// NewNormalizer uses the default aliases, a randomly seeded filler and the real clock
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Team:  NewTeamMatcher(),
		Form:  NewRandomFormFiller(),
		Clock: clockwork.NewRealClock(),
	}
}

func (n *Normalizer) now() time.Time {
	return n.Clock.Now()
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a team name into a stable identifier
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

var leadingInt = regexp.MustCompile(`[-+]?\d+`)

// ParseInt reads the first integer in s, tolerating signs, unicode minus and
// trailing units ("+12", "−3", "42 pts"). ok is false when s holds no digits.
func ParseInt(s string) (int, bool) {
	s = strings.ReplaceAll(s, "−", "-")
	s = strings.ReplaceAll(s, ",", "")
	m := leadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFormString reads a compact provider form string such as "WWDLW" or "W-D-L"
func ParseFormString(s string) []models.FormResult {
	var out []models.FormResult
	for _, r := range strings.ToUpper(s) {
		if fr, ok := models.ParseFormResult(string(r)); ok {
			out = append(out, fr)
		}
	}
	return out
}
