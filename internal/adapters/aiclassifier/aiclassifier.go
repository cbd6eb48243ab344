// internal/adapters/aiclassifier/aiclassifier.go
package aiclassifier

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"gopkg.in/yaml.v3"

	"surfacex/internal/core/domain"
	"surfacex/internal/platform/errors"
	"surfacex/internal/platform/logx"
)

const (
	defaultTemperature = 0.2
	defaultTimeout     = 30 * time.Second

	// historyWindow limita los mensajes de conversación que se conservan;
	// el system prompt se re-fija siempre en la posición cero.
	historyWindow = 10

	// maxAttempts es el número de intentos ante respuestas inválidas o
	// fallos de transporte antes de rendirse con el grupo.
	maxAttempts = 3

	// autoSkipCount es el umbral a partir del cual un grupo se descarta
	// sin consultar al modelo: listas tan grandes casi siempre son ruido
	// de infraestructura compartida.
	autoSkipCount = 10000
)

const systemPrompt = `You are an attack surface discovery analyst. You review search directions
found for nodes of an attack surface graph and decide which searches are worth
executing to expand the surface of the target organization. Stay strictly in
scope: accept only directions likely to return assets belonging to the target.

Reply ONLY with a JSON object of the form
{"add": [], "skip": [], "partly": []}
where each array contains direction ids. Use "add" for directions whose
results should all join the surface, "skip" for irrelevant or overly generic
directions, and "partly" for small directions whose items you want to review
one by one before adding. Never use "partly" for a direction with 20 or more
results. The target root domain is: `

const partlySystemHint = `

When you receive a PARTLY REQUEST, reply ONLY with a JSON object of the form
{"nodes": []} listing the exact items, verbatim, that belong to the target.`

const repeatPrompt = `Your previous answer was invalid. Reply again with ONLY the JSON object in
the requested format, with no extra text. Direction ids must be taken from the
request, and "partly" is not allowed for directions with 20 or more results.`

// chatClient abstrae el cliente de chat completions para poder inyectar un
// doble en tests. *openai.Client lo satisface directamente.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Classifier implementa ports.GroupClassifier delegando los veredictos en un
// modelo de chat. Mantiene una ventana de conversación para que el modelo
// conserve contexto entre grupos consecutivos del mismo recorrido.
//
// Las reglas de política que no necesitan modelo (trackers siempre dentro,
// listas enormes siempre fuera) viven aquí, en el adapter: el engine no
// conoce heurísticas de relevancia.
type Classifier struct {
	client  chatClient
	model   string
	timeout time.Duration
	logger  logx.Logger

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
	system  openai.ChatCompletionMessage
}

// Config configura el clasificador.
type Config struct {
	APIKey  string
	Model   string
	Root    string
	Timeout time.Duration
}

// New crea un clasificador sobre la API de OpenAI.
func New(cfg Config, logger logx.Logger) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(domain.ErrMissingConfig, "aiclassifier: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1"
	}
	return newWithClient(openai.NewClient(cfg.APIKey), cfg, logger), nil
}

func newWithClient(client chatClient, cfg Config, logger logx.Logger) *Classifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	system := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt + "**" + cfg.Root + "**" + partlySystemHint,
	}
	return &Classifier{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("component", "aiclassifier"),
		history: []openai.ChatCompletionMessage{system},
		system:  system,
	}
}

// Classify decide el destino de un grupo de descubrimiento.
func (c *Classifier) Classify(ctx context.Context, node *domain.Node, group domain.DiscoveryGroup) (domain.Decision, error) {
	// Regla: los grupos relacionados con trackers HTTP entran siempre;
	// son los conectores más fuertes entre activos de una organización.
	if isTrackerGroup(node, group) {
		c.logger.Debug("tracker rule applied", "group", group.SearchField)
		return domain.Add(), nil
	}

	// Regla: por encima del umbral nunca merece la pena ni preguntar.
	if group.Count >= autoSkipCount {
		c.logger.Debug("auto-skip rule applied", "group", group.SearchField, "count", group.Count)
		return domain.Skip(), nil
	}

	request, err := directionRequest(node, group)
	if err != nil {
		return domain.Skip(), err
	}

	answer, err := ask(c, ctx, request, func(raw string) (directionAnswer, bool) {
		return parseDirectionAnswer(raw, group)
	})
	if err != nil {
		return domain.Skip(), err
	}

	switch {
	case contains(answer.Add, group.ID):
		return domain.Add(), nil
	case contains(answer.Partly, group.ID):
		// sin subconjunto resuelto: el engine materializa la lista
		// completa y vuelve con ReviewPartial
		return domain.Partly(nil), nil
	default:
		return domain.Skip(), nil
	}
}

// ReviewPartial selecciona los items aceptados de un grupo ya materializado.
func (c *Classifier) ReviewPartial(ctx context.Context, group domain.DiscoveryGroup) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("PARTLY REQUEST for `")
	sb.WriteString(group.SearchField)
	sb.WriteString("`:\n\n")
	for _, item := range group.Items {
		sb.WriteString(item)
		sb.WriteString("\n")
	}

	answer, err := ask(c, ctx, sb.String(), func(raw string) (partlyAnswer, bool) {
		return parsePartlyAnswer(raw, group)
	})
	if err != nil {
		return nil, err
	}
	return answer.Nodes, nil
}

// ask envía una consulta al modelo con reintentos: una respuesta que no pasa
// la validación se reformula con el repeat prompt; un fallo de transporte se
// reintenta con la misma entrada. Es una función libre porque los métodos no
// admiten type parameters.
func ask[T any](c *Classifier, ctx context.Context, input string, parse func(string) (T, bool)) (T, error) {
	var zero T
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := c.send(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			c.logger.Warn("model query failed", "attempt", attempt+1, "error", err.Error())
			continue
		}

		answer, ok := parse(raw)
		if ok {
			return answer, nil
		}

		c.logger.Warn("model answer rejected by validation", "attempt", attempt+1)
		input = repeatPrompt
	}
	return zero, errors.Wrapf(errors.ErrInvalidResponse, "no valid model answer after %d attempts", maxAttempts)
}

// send añade el mensaje al historial, consulta el modelo y registra la
// respuesta. El historial se recorta a la ventana con el system prompt
// re-fijado al frente.
func (c *Classifier) send(ctx context.Context, input string) (string, error) {
	c.mu.Lock()
	c.history = append(c.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})
	if len(c.history) > historyWindow {
		c.history = c.history[len(c.history)-historyWindow:]
	}
	c.history[0] = c.system
	messages := make([]openai.ChatCompletionMessage, len(c.history))
	copy(messages, c.history)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if !strings.HasPrefix(resp.Model, c.model) {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "unexpected model %q, requested %q", resp.Model, c.model)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrInvalidResponse, "empty choices in completion")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	c.mu.Lock()
	c.history = append(c.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: content,
	})
	c.mu.Unlock()

	return content, nil
}

// Close implementa el cierre del clasificador. El cliente HTTP subyacente no
// requiere liberación explícita.
func (c *Classifier) Close() error {
	return nil
}

// directionRequest serializa el nodo y su dirección pendiente para el modelo.
func directionRequest(node *domain.Node, group domain.DiscoveryGroup) (string, error) {
	payload := struct {
		Label      string          `yaml:"label"`
		Type       string          `yaml:"type"`
		Value      string          `yaml:"value"`
		Directions []directionInfo `yaml:"search_directions"`
	}{
		Label: node.Label,
		Type:  string(node.Entity.Type),
		Value: node.Entity.Value,
		Directions: []directionInfo{{
			ID:          group.ID,
			SearchField: group.SearchField,
			Count:       group.Count,
			Preview:     group.Items,
		}},
	}

	encoded, err := yaml.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal direction request")
	}
	return "DIRECTION REQUEST:\n\n" + string(encoded), nil
}

type directionInfo struct {
	ID          string   `yaml:"id"`
	SearchField string   `yaml:"search_field"`
	Count       int      `yaml:"count"`
	Preview     []string `yaml:"preview,omitempty"`
}

// directionAnswer es la respuesta del modelo a un DIRECTION REQUEST.
type directionAnswer struct {
	Add    []string
	Skip   []string
	Partly []string
}

// parseDirectionAnswer valida la respuesta del modelo: JSON bien formado,
// ids pertenecientes a la petición y partly solo bajo el umbral.
func parseDirectionAnswer(raw string, group domain.DiscoveryGroup) (directionAnswer, bool) {
	var decoded struct {
		Add    []json.Number `json:"add"`
		Skip   []json.Number `json:"skip"`
		Partly []json.Number `json:"partly"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &decoded); err != nil {
		return directionAnswer{}, false
	}

	answer := directionAnswer{
		Add:    toIDs(decoded.Add),
		Skip:   toIDs(decoded.Skip),
		Partly: toIDs(decoded.Partly),
	}

	for _, id := range append(append(append([]string{}, answer.Add...), answer.Skip...), answer.Partly...) {
		if id != group.ID {
			return directionAnswer{}, false
		}
	}
	for _, id := range answer.Partly {
		if id == group.ID && group.Count >= domain.MaxPartlyCount {
			return directionAnswer{}, false
		}
	}
	return answer, true
}

// partlyAnswer es la respuesta del modelo a un PARTLY REQUEST.
type partlyAnswer struct {
	Nodes []string `json:"nodes"`
}

// parsePartlyAnswer valida que todos los items aceptados pertenecen al grupo.
func parsePartlyAnswer(raw string, group domain.DiscoveryGroup) (partlyAnswer, bool) {
	var answer partlyAnswer
	if err := json.Unmarshal([]byte(extractJSON(raw)), &answer); err != nil {
		return partlyAnswer{}, false
	}
	for _, item := range answer.Nodes {
		if !group.Contains(item) {
			return partlyAnswer{}, false
		}
	}
	return answer, true
}

// extractJSON recorta cercos de markdown que algunos modelos añaden.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
		raw = strings.TrimSpace(raw)
	}
	return raw
}

func toIDs(nums []json.Number) []string {
	ids := make([]string, 0, len(nums))
	for _, n := range nums {
		ids = append(ids, n.String())
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// isTrackerGroup detecta grupos relacionados con trackers HTTP, tanto por el
// tipo del nodo origen como por el campo de búsqueda de la dirección.
func isTrackerGroup(node *domain.Node, group domain.DiscoveryGroup) bool {
	if group.Type == domain.EntityTypeHTTPTracker {
		return true
	}
	if node.Entity.Type == domain.EntityTypeHTTPTracker {
		return true
	}
	return strings.Contains(strings.ToLower(group.SearchField), "tracker")
}
