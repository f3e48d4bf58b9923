package handler

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"ceiba21/internal/conversation"
	"ceiba21/internal/domain"
	"ceiba21/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler wires Telegram updates into the conversation engine and renders
// the engine's channel-neutral responses back as Telegram messages.
type Handler struct {
	bot         *tele.Bot
	engine      *conversation.Engine
	userService *service.UserService
	logger      *zap.Logger
	timeout     time.Duration
}

// NewHandler creates a new handler instance. The timeout bounds all
// per-update downstream work (database, Redis, rate lookups).
func NewHandler(
	bot *tele.Bot,
	engine *conversation.Engine,
	userService *service.UserService,
	logger *zap.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{
		bot:         bot,
		engine:      engine,
		userService: userService,
		logger:      logger,
		timeout:     timeout,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands travel through the same text path as everything else; the
	// engine recognizes them itself
	h.bot.Handle("/start", h.handleText)
	h.bot.Handle("/cancel", h.handleText)
	h.bot.Handle("/help", h.handleText)
	h.bot.Handle("/status", h.handleText)

	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
	h.bot.Handle(tele.OnPhoto, h.handleProof)
	h.bot.Handle(tele.OnDocument, h.handleProof)
}

func (h *Handler) handleText(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	user, err := h.resolveUser(ctx, c)
	if err != nil {
		return h.rejectUser(c, err)
	}

	resp, err := h.engine.HandleMessage(ctx, user, chatID(c), c.Text())
	if err != nil {
		h.logger.Error("Message handling failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return c.Send("⚠️ Algo salió mal. Escribe /start para intentar de nuevo.")
	}

	return h.send(c, resp)
}

func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	user, err := h.resolveUser(ctx, c)
	if err != nil {
		if ackErr := c.Respond(); ackErr != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
		}
		return h.rejectUser(c, err)
	}

	data := cleanCallbackData(callback.Data)
	resp, err := h.engine.HandleCallback(ctx, user, chatID(c), data)
	if err != nil {
		h.logger.Error("Callback handling failed",
			zap.Int64("user_id", user.ID),
			zap.String("data", data),
			zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Algo salió mal, intenta de nuevo"})
	}

	return h.edit(c, resp)
}

func (h *Handler) handleProof(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	user, err := h.resolveUser(ctx, c)
	if err != nil {
		return h.rejectUser(c, err)
	}

	fileRef := proofFileID(c)
	if fileRef == "" {
		return c.Send("⚠️ No pude leer el archivo. Envía una foto o captura del comprobante.")
	}

	resp, err := h.engine.HandleProof(ctx, user, chatID(c), fileRef)
	if err != nil {
		h.logger.Error("Proof handling failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return c.Send("⚠️ No pudimos registrar tu comprobante. Intenta de nuevo en unos minutos.")
	}

	return h.send(c, resp)
}

// resolveUser registers or refreshes the sender and rejects blocked accounts
func (h *Handler) resolveUser(ctx context.Context, c tele.Context) (*domain.User, error) {
	sender := c.Sender()
	return h.userService.EnsureTelegramUser(ctx, sender.ID, sender.Username, sender.FirstName, sender.LastName)
}

func (h *Handler) rejectUser(c tele.Context, err error) error {
	if err == service.ErrUserBlocked {
		return c.Send("🚫 Tu cuenta está bloqueada. Contacta a soporte: @ceiba21soporte")
	}
	h.logger.Error("Could not resolve user", zap.Error(err))
	return c.Send("⚠️ Algo salió mal. Intenta de nuevo en unos minutos.")
}

// send renders a response as a new message
func (h *Handler) send(c tele.Context, resp *domain.Response) error {
	if resp == nil {
		return nil
	}
	return c.Send(resp.Text, renderMarkup(resp), tele.ModeMarkdown)
}

// edit renders a response over the message whose button was pressed, falling
// back to a fresh message when Telegram refuses the edit
func (h *Handler) edit(c tele.Context, resp *domain.Response) error {
	if resp == nil {
		return c.Respond()
	}

	if err := c.Edit(resp.Text, renderMarkup(resp), tele.ModeMarkdown); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return c.Respond()
		}
		h.logger.Warn("Failed to edit message, sending new",
			zap.Error(err),
			zap.Int64("user_id", c.Sender().ID))
		if ackErr := c.Respond(); ackErr != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
		}
		return c.Send(resp.Text, renderMarkup(resp), tele.ModeMarkdown)
	}
	return c.Respond()
}

// renderMarkup translates response buttons into a Telegram inline keyboard
func renderMarkup(resp *domain.Response) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	if len(resp.Buttons) == 0 {
		return markup
	}

	rows := make([]tele.Row, 0, len(resp.Buttons))
	for _, row := range resp.Buttons {
		teleRow := tele.Row{}
		for _, btn := range row {
			if btn.URL != "" {
				teleRow = append(teleRow, markup.URL(btn.Text, btn.URL))
			} else {
				teleRow = append(teleRow, markup.Data(btn.Text, btn.Data))
			}
		}
		rows = append(rows, teleRow)
	}
	markup.Inline(rows...)
	return markup
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

func chatID(c tele.Context) string {
	if c.Chat() == nil {
		return ""
	}
	return strconv.FormatInt(c.Chat().ID, 10)
}

// proofFileID extracts a stable file reference from a photo or document
func proofFileID(c tele.Context) string {
	msg := c.Message()
	if msg == nil {
		return ""
	}
	if msg.Photo != nil {
		return msg.Photo.FileID
	}
	if msg.Document != nil {
		return msg.Document.FileID
	}
	return ""
}
