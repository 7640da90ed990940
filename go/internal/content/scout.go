package content

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/mcdev12/touchline/go/internal/models"
)

//go:embed prompts/scouting_report.txt
var scoutingReportPrompt string

const (
	reportCacheSize = 512
	defaultModel    = "gemini-2.5-flash"
)

var ErrPlayerNotFound = errors.New("player not found")

var reportTemplate = template.Must(template.New("scouting_report").Parse(scoutingReportPrompt))

// Reporter writes a scouting report for one player
type Reporter interface {
	Report(ctx context.Context, brief Brief) (string, error)
}

// Brief is everything a scout is told about a player
type Brief struct {
	Club      string
	Name      string
	Age       int
	Position  models.Position
	Rating    int
	Potential int
	Value     string
	Wage      string
	YearsLeft int
	Injury    string
	Listed    bool
}

// NewBrief describes p for a scout working for club
func NewBrief(club string, p *models.Player) Brief {
	b := Brief{
		Club:      club,
		Name:      p.Name,
		Age:       p.Age,
		Position:  p.Position,
		Rating:    p.Rating,
		Potential: p.Potential,
		Value:     models.Money(p.MarketValue),
		Wage:      models.Money(p.Contract.Wage),
		YearsLeft: p.Contract.YearsLeft,
		Listed:    p.OnTransferList || p.OnLoanList,
	}
	if p.Injury != nil {
		b.Injury = fmt.Sprintf("%s, %d week(s) out", p.Injury.Kind, p.Injury.WeeksLeft)
	}
	return b
}

// GeminiReporter asks a Gemini model for the report
type GeminiReporter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiReporter connects to Gemini. An empty model name picks the default.
func NewGeminiReporter(ctx context.Context, apiKey, model string) (*GeminiReporter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiReporter{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Close releases the client connection
func (g *GeminiReporter) Close() error {
	return g.client.Close()
}

// Report implements Reporter
func (g *GeminiReporter) Report(ctx context.Context, brief Brief) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, brief); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from gemini")
	}
	return strings.TrimSpace(string(text)), nil
}

// TemplateReporter writes a fixed-form report from the numbers alone
type TemplateReporter struct{}

// Report implements Reporter
func (TemplateReporter) Report(_ context.Context, b Brief) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d, %s) is rated %d", b.Name, b.Age, b.Position, b.Rating)
	switch gap := b.Potential - b.Rating; {
	case gap >= 15:
		fmt.Fprintf(&sb, " with the potential to reach %d; a genuine prospect.", b.Potential)
	case gap >= 5:
		fmt.Fprintf(&sb, " and still improving towards %d.", b.Potential)
	default:
		sb.WriteString(" and close to the ceiling.")
	}
	fmt.Fprintf(&sb, " Valued at %s on %s a week with %d year(s) left.", b.Value, b.Wage, b.YearsLeft)
	if b.Injury != "" {
		fmt.Fprintf(&sb, " Currently injured (%s).", b.Injury)
	}
	switch {
	case b.Rating >= 75:
		sb.WriteString(" Recommendation: sign if the fee is right.")
	case b.Potential-b.Rating >= 15:
		sb.WriteString(" Recommendation: worth a development gamble.")
	default:
		sb.WriteString(" Recommendation: squad depth only.")
	}
	return sb.String(), nil
}

// Scout caches reports per player. Entries are keyed on the numbers the
// report is written from, so a report refreshes when the player changes.
type Scout struct {
	reporter Reporter
	fallback Reporter
	cache    *lru.Cache
}

// NewScout creates a new Scout. reporter may be nil to use only the
// template reports.
func NewScout(reporter Reporter) *Scout {
	cache, _ := lru.New(reportCacheSize)
	if reporter == nil {
		reporter = TemplateReporter{}
	}
	return &Scout{
		reporter: reporter,
		fallback: TemplateReporter{},
		cache:    cache,
	}
}

// Report returns the scouting report on playerID as seen by the human club
func (s *Scout) Report(ctx context.Context, state *models.SeasonState, playerID uuid.UUID) (string, error) {
	_, p := state.FindPlayer(playerID)
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}
	club := "the club"
	if human := state.HumanClub(); human != nil {
		club = human.Name
	}
	brief := NewBrief(club, p)

	key := fmt.Sprintf("%s/%s/%d/%d/%d/%t/%s", state.Label, p.ID, p.Age, p.Rating, p.Potential, brief.Listed, brief.Injury)
	if v, ok := s.cache.Get(key); ok {
		return v.(string), nil
	}

	report, err := s.reporter.Report(ctx, brief)
	if err != nil {
		log.Warn().Err(err).Str("player", p.Name).Msg("scouting report failed; using template")
		// template reports are not cached so the next request retries
		return s.fallback.Report(ctx, brief)
	}
	s.cache.Add(key, report)
	return report, nil
}
