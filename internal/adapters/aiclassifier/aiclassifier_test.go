// internal/adapters/aiclassifier/aiclassifier_test.go
package aiclassifier

import (
	"context"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/logx"
	"surfacex/internal/testutil"
)

// scriptedChat responde en orden con las respuestas programadas.
type scriptedChat struct {
	model     string
	replies   []string
	errs      []error
	calls     int
	lastReq   openai.ChatCompletionRequest
	allInputs []string
}

func (s *scriptedChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	idx := s.calls
	s.calls++
	s.lastReq = req
	if len(req.Messages) > 0 {
		s.allInputs = append(s.allInputs, req.Messages[len(req.Messages)-1].Content)
	}

	if idx < len(s.errs) && s.errs[idx] != nil {
		return openai.ChatCompletionResponse{}, s.errs[idx]
	}

	reply := ""
	if idx < len(s.replies) {
		reply = s.replies[idx]
	}
	model := s.model
	if model == "" {
		model = "gpt-4.1-2025-04-14"
	}
	return openai.ChatCompletionResponse{
		Model: model,
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: reply,
			},
		}},
	}, nil
}

func newTestClassifier(chat *scriptedChat) *Classifier {
	return newWithClient(chat, Config{
		APIKey: "test",
		Model:  "gpt-4.1",
		Root:   "example.com",
	}, logx.NewSilent())
}

func previewGroup(id string, count int, items ...string) domain.DiscoveryGroup {
	return domain.DiscoveryGroup{
		ID:          id,
		SearchField: "subdomains",
		Count:       count,
		Items:       items,
	}
}

func classifyNode() *domain.Node {
	return domain.NewNode(domain.NewEntity(domain.EntityTypeDomain, "example.com"), "example.com")
}

func TestClassify_AddVerdict(t *testing.T) {
	chat := &scriptedChat{replies: []string{`{"add": [4], "skip": [], "partly": []}`}}
	classifier := newTestClassifier(chat)

	decision, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 3, "a.example.com"))
	testutil.AssertNoError(t, err, "classify")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionAdd, "add verdict")
	testutil.AssertEqual(t, chat.calls, 1, "single round trip")
	testutil.AssertEqual(t, chat.lastReq.Model, "gpt-4.1", "requested model")
}

func TestClassify_PartlyComesUnresolved(t *testing.T) {
	chat := &scriptedChat{replies: []string{`{"add": [], "skip": [], "partly": [4]}`}}
	classifier := newTestClassifier(chat)

	decision, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 12, "a.example.com"))
	testutil.AssertNoError(t, err, "classify")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionPartly, "partly verdict")
	testutil.AssertLen(t, decision.Accepted, 0, "subset resolved later via review")
}

func TestClassify_InvalidAnswerRepromptedThenAccepted(t *testing.T) {
	chat := &scriptedChat{replies: []string{
		"sure! I would add direction 4",           // no JSON
		`{"add": [99], "skip": [], "partly": []}`, // id desconocido
		`{"add": [4], "skip": [], "partly": []}`,  // válida
	}}
	classifier := newTestClassifier(chat)

	decision, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 3, "a.example.com"))
	testutil.AssertNoError(t, err, "classify recovers")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionAdd, "final verdict")
	testutil.AssertEqual(t, chat.calls, 3, "two reprompts")
	testutil.AssertContains(t, chat.allInputs[1], "invalid", "repeat prompt sent")
}

func TestClassify_GivesUpAfterRetries(t *testing.T) {
	chat := &scriptedChat{replies: []string{"nope", "still nope", "nope again"}}
	classifier := newTestClassifier(chat)

	_, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 3, "a.example.com"))
	testutil.AssertError(t, err, "no valid answer after retries")
	testutil.AssertEqual(t, chat.calls, 3, "bounded attempts")
}

func TestClassify_PartlyOnLargeGroupRejectedByValidation(t *testing.T) {
	chat := &scriptedChat{replies: []string{
		`{"add": [], "skip": [], "partly": [4]}`, // ilegal: count en el umbral
		`{"add": [], "skip": [4], "partly": []}`,
	}}
	classifier := newTestClassifier(chat)

	decision, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 20, "a.example.com"))
	testutil.AssertNoError(t, err, "classify")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionSkip, "reprompted into a legal verdict")
	testutil.AssertEqual(t, chat.calls, 2, "one reprompt")
}

func TestClassify_TrackerRuleBypassesModel(t *testing.T) {
	chat := &scriptedChat{}
	classifier := newTestClassifier(chat)

	group := domain.DiscoveryGroup{ID: "9", SearchField: "sites with same tracker", Count: 40000, Items: []string{"x"}}
	decision, err := classifier.Classify(context.Background(), classifyNode(), group)

	testutil.AssertNoError(t, err, "classify")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionAdd, "tracker groups always accepted")
	testutil.AssertEqual(t, chat.calls, 0, "no model round trip")
}

func TestClassify_HugeCountRuleSkipsWithoutModel(t *testing.T) {
	chat := &scriptedChat{}
	classifier := newTestClassifier(chat)

	group := previewGroup("7", 15000, "10.0.0.0/8")
	group.SearchField = "ip_range"
	decision, err := classifier.Classify(context.Background(), classifyNode(), group)

	testutil.AssertNoError(t, err, "classify")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionSkip, "skip verdict")
	testutil.AssertEqual(t, chat.calls, 0, "no model round trip")
}

func TestClassify_UnexpectedModelRejected(t *testing.T) {
	chat := &scriptedChat{model: "gpt-3.5-turbo", replies: []string{
		`{"add": [4], "skip": [], "partly": []}`,
		`{"add": [4], "skip": [], "partly": []}`,
		`{"add": [4], "skip": [], "partly": []}`,
	}}
	classifier := newTestClassifier(chat)

	_, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 3, "a.example.com"))
	testutil.AssertError(t, err, "responses from another model are refused")
}

func TestReviewPartial_ValidSubset(t *testing.T) {
	chat := &scriptedChat{replies: []string{`{"nodes": ["x1", "x3"]}`}}
	classifier := newTestClassifier(chat)

	group := previewGroup("4", 5, "x1", "x2", "x3", "x4", "x5")
	accepted, err := classifier.ReviewPartial(context.Background(), group)

	testutil.AssertNoError(t, err, "review")
	testutil.AssertLen(t, accepted, 2, "accepted subset")
	testutil.AssertContains(t, chat.allInputs[0], "PARTLY REQUEST", "review prompt shape")
}

func TestReviewPartial_ForeignValueReprompted(t *testing.T) {
	chat := &scriptedChat{replies: []string{
		`{"nodes": ["intruder.example.org"]}`,
		`{"nodes": ["x1"]}`,
	}}
	classifier := newTestClassifier(chat)

	accepted, err := classifier.ReviewPartial(context.Background(), previewGroup("4", 3, "x1", "x2", "x3"))
	testutil.AssertNoError(t, err, "review recovers")
	testutil.AssertLen(t, accepted, 1, "only in-group values accepted")
	testutil.AssertEqual(t, accepted[0], "x1", "accepted value")
}

func TestSend_TransportErrorRetriesSameInput(t *testing.T) {
	chat := &scriptedChat{
		errs:    []error{fmt.Errorf("connection reset"), nil},
		replies: []string{"", `{"add": [4], "skip": [], "partly": []}`},
	}
	classifier := newTestClassifier(chat)

	decision, err := classifier.Classify(context.Background(), classifyNode(), previewGroup("4", 3, "a.example.com"))
	testutil.AssertNoError(t, err, "classify recovers from transport error")
	testutil.AssertEqual(t, decision.Kind, domain.DecisionAdd, "verdict")
	testutil.AssertEqual(t, chat.calls, 2, "retried once")

	// la entrada reintentada es la original, no el repeat prompt
	testutil.AssertContains(t, chat.allInputs[1], "DIRECTION REQUEST", "original input resent")
}

func TestHistoryWindow_Bounded(t *testing.T) {
	chat := &scriptedChat{}
	for i := 0; i < 30; i++ {
		chat.replies = append(chat.replies, `{"add": [4], "skip": [], "partly": []}`)
	}
	classifier := newTestClassifier(chat)

	for i := 0; i < 15; i++ {
		group := previewGroup("4", 3, fmt.Sprintf("s%d.example.com", i))
		_, err := classifier.Classify(context.Background(), classifyNode(), group)
		testutil.AssertNoError(t, err, "classify")
	}

	testutil.AssertTrue(t, len(chat.lastReq.Messages) <= historyWindow+1, "history stays within the window")
	testutil.AssertEqual(t, chat.lastReq.Messages[0].Role, openai.ChatMessageRoleSystem, "system prompt pinned first")
}
