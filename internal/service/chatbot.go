package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/metrics"
	"github.com/aeroway/aeroway-api/internal/model"
	"github.com/aeroway/aeroway-api/internal/repository"
)

const DefaultChatLanguage = "fr"

type topic string

const (
	topicGreeting   topic = "greeting"
	topicHelp       topic = "help"
	topicFlightInfo topic = "flight_info"
	topicNavigation topic = "navigation"
	topicServices   topic = "services"
	topicDelay      topic = "delay"
	topicDefault    topic = "default"
)

// Topics are tried in order; the first keyword hit wins.
var topicKeywords = []struct {
	topic    topic
	keywords []string
}{
	{topicGreeting, []string{"bonjour", "hello", "salut", "hi", "مرحبا", "السلام"}},
	{topicHelp, []string{"aide", "help", "assistance", "مساعدة"}},
	{topicFlightInfo, []string{"vol", "flight", "avion", "رحلة", "طائرة"}},
	{topicNavigation, []string{"navigation", "navigate", "carte", "map", "où", "where", "أين", "خريطة"}},
	{topicServices, []string{"service", "restaurant", "shop", "boutique", "café", "متجر", "مطعم"}},
	{topicDelay, []string{"retard", "delay", "late", "تأخير"}},
}

var chatResponses = map[string]map[topic]string{
	"fr": {
		topicGreeting:   "Bonjour! Je suis l'assistant AeroWay. Comment puis-je vous aider aujourd'hui?",
		topicHelp:       "Je peux vous aider avec: les informations de vol, la navigation dans l'aéroport, les services disponibles, et bien plus encore.",
		topicFlightInfo: "Pour obtenir des informations sur votre vol, veuillez me donner votre numéro de vol ou de billet.",
		topicNavigation: "Je peux vous guider vers votre porte d'embarquement, les toilettes, les restaurants, ou tout autre lieu dans l'aéroport.",
		topicServices:   "L'aéroport offre des boutiques duty-free, restaurants, cafés, salons, et bien d'autres services. Que recherchez-vous?",
		topicDelay:      "En cas de retard, vérifiez les écrans d'information ou je vous enverrai une notification automatique.",
		topicDefault:    "Je comprends votre question. Laissez-moi vous aider avec cela. Vous pouvez me demander des informations sur les vols, les services, ou la navigation dans l'aéroport.",
	},
	"en": {
		topicGreeting:   "Hello! I'm the AeroWay assistant. How can I help you today?",
		topicHelp:       "I can help you with: flight information, airport navigation, available services, and much more.",
		topicFlightInfo: "To get information about your flight, please provide your flight or ticket number.",
		topicNavigation: "I can guide you to your boarding gate, restrooms, restaurants, or any other location in the airport.",
		topicServices:   "The airport offers duty-free shops, restaurants, cafes, lounges, and many other services. What are you looking for?",
		topicDelay:      "In case of delay, check the information screens or I will send you an automatic notification.",
		topicDefault:    "I understand your question. Let me help you with that. You can ask me about flights, services, or airport navigation.",
	},
	"ar": {
		topicGreeting:   "مرحبا! أنا مساعد AeroWay. كيف يمكنني مساعدتك اليوم؟",
		topicHelp:       "يمكنني مساعدتك في: معلومات الرحلة، التنقل في المطار، الخدمات المتاحة، وأكثر من ذلك بكثير.",
		topicFlightInfo: "للحصول على معلومات حول رحلتك، يرجى تقديم رقم رحلتك أو رقم التذكرة.",
		topicNavigation: "يمكنني إرشادك إلى بوابة الصعود، دورات المياه، المطاعم، أو أي موقع آخر في المطار.",
		topicServices:   "يوفر المطار متاجر معفاة من الرسوم الجمركية ومطاعم ومقاهي وصالات وخدمات أخرى كثيرة. ماذا تبحث؟",
		topicDelay:      "في حالة التأخير، تحقق من شاشات المعلومات أو سأرسل لك إشعارًا تلقائيًا.",
		topicDefault:    "أفهم سؤالك. دعني أساعدك في ذلك. يمكنك سؤالي عن الرحلات أو الخدمات أو التنقل في المطار.",
	},
}

// SupportedLanguage reports whether lang has a response table.
func SupportedLanguage(lang string) bool {
	_, ok := chatResponses[lang]
	return ok
}

// classify matches keywords as substrings of the lower-cased message, so
// "hi" also matches "this".
func classify(message string) topic {
	lower := strings.ToLower(message)
	for _, entry := range topicKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.topic
			}
		}
	}
	return topicDefault
}

// BotResponse returns the canned answer to message in lang, falling back
// to French for unknown languages.
func BotResponse(message, lang string) string {
	responses, ok := chatResponses[lang]
	if !ok {
		responses = chatResponses[DefaultChatLanguage]
	}
	return responses[classify(message)]
}

type ChatInput struct {
	Message   string
	SessionID string
	Language  string
	// UserID is empty for anonymous callers.
	UserID string
}

type ChatbotService struct {
	messages repository.ChatMessageRepository
	now      func() time.Time
	newID    func() string
}

func NewChatbotService(messages repository.ChatMessageRepository) *ChatbotService {
	return &ChatbotService{
		messages: messages,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Send stores the user's message and the bot reply under one session,
// opening a new session when none is given.
func (s *ChatbotService) Send(ctx context.Context, in ChatInput) (*model.ChatReply, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, apperrors.MissingRequired("message")
	}

	lang := in.Language
	if lang == "" {
		lang = DefaultChatLanguage
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	var userID *string
	if in.UserID != "" {
		userID = &in.UserID
	}

	if _, err := s.messages.Create(ctx, model.CreateChatMessageParams{
		UserID:      userID,
		SessionID:   sessionID,
		Sender:      model.SenderUser,
		MessageText: in.Message,
	}); err != nil {
		return nil, storeErr(err)
	}

	reply := BotResponse(in.Message, lang)
	if _, err := s.messages.Create(ctx, model.CreateChatMessageParams{
		UserID:      userID,
		SessionID:   sessionID,
		Sender:      model.SenderBot,
		MessageText: reply,
	}); err != nil {
		return nil, storeErr(err)
	}

	metrics.ChatMessages.WithLabelValues(lang).Inc()
	return &model.ChatReply{
		Message:   reply,
		Sender:    string(model.SenderBot),
		Timestamp: s.now().UTC(),
		SessionID: sessionID,
	}, nil
}

// History returns a session's messages oldest first. An authenticated
// caller only sees their own messages in that session.
func (s *ChatbotService) History(ctx context.Context, sessionID, userID string, limit int) ([]model.ChatMessage, error) {
	var scope *string
	if userID != "" {
		scope = &userID
	}
	messages, err := s.messages.FindBySession(ctx, sessionID, scope, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return messages, nil
}

// UserHistory returns the caller's messages across sessions, newest first.
func (s *ChatbotService) UserHistory(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	messages, err := s.messages.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return messages, nil
}

// DeleteHistory removes the caller's messages in a session. Deleting a
// session with no messages is not an error.
func (s *ChatbotService) DeleteHistory(ctx context.Context, sessionID, userID string) error {
	return storeErr(s.messages.DeleteSession(ctx, sessionID, userID))
}
