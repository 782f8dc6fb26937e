package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"saffron-order-desk/internal/catalog"
	"saffron-order-desk/internal/debounce"
	"saffron-order-desk/internal/metrics"
	"saffron-order-desk/internal/order"
	"saffron-order-desk/internal/session"
	"saffron-order-desk/internal/storefront"
	"saffron-order-desk/internal/telegram"
)

const surface = "bot"

// Messenger is the slice of the Telegram client the handlers use.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard, preview bool) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard, preview bool) error
	AnswerCallback(callbackID, text string, alert bool) error
}

type Options struct {
	Telegram Messenger
	Sessions *session.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type Handler struct {
	tg        Messenger
	sessions  *session.Store
	cat       *catalog.Catalog
	metrics   *metrics.Metrics
	logger    *slog.Logger
	debouncer *debounce.Debouncer
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:       opts.Telegram,
		sessions: opts.Sessions,
		cat:      opts.Sessions.Catalog(),
		metrics:  opts.Metrics,
		logger:   logger,
	}
}

// SetDebouncer routes quantity re-renders through d. Without one every
// change is rendered immediately.
func (h *Handler) SetDebouncer(d *debounce.Debouncer) {
	h.debouncer = d
}

// Commands lists the bot menu in display order.
func Commands() ([]string, map[string]string) {
	order := []string{"start", "catalog", "cart", "checkout", "note", "clear", "contact", "help"}
	return order, map[string]string{
		"start":    "Open the storefront",
		"catalog":  "Browse products",
		"cart":     "Show your order cart",
		"checkout": "Get the WhatsApp order link",
		"note":     "Add a note to your order",
		"clear":    "Empty the cart",
		"contact":  "Shop address and hours",
		"help":     "How ordering works",
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if msg.Text != "" {
		return h.handleText(ctx, chatID, userID, username, msg.Text)
	}

	return nil
}

// Render redraws the storefront message for a debounced request.
func (h *Handler) Render(ctx context.Context, req debounce.Request) {
	if err := ctx.Err(); err != nil {
		return
	}
	if err := h.renderUI(req.ChatID, req.UserID, req.MessageID, true); err != nil {
		h.logger.Error("debounced render failed", "chat_id", req.ChatID, "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	key := session.ChatKey(chatID, userID)

	switch msg.Command() {
	case "start":
		h.sessions.UpdateAs(key, username, func(st *storefront.State) {
			st.CloseAll()
			st.MessageID = 0
		})
		if err := h.tg.SendText(chatID, welcomeText(h.cat)); err != nil {
			return err
		}
		return h.renderUI(chatID, userID, 0, false)
	case "catalog":
		h.sessions.UpdateAs(key, username, func(st *storefront.State) { st.CloseAll() })
		return h.renderUI(chatID, userID, 0, false)
	case "cart":
		h.sessions.UpdateAs(key, username, func(st *storefront.State) { st.OpenCart() })
		return h.renderUI(chatID, userID, 0, false)
	case "checkout":
		return h.sendCheckout(chatID, userID)
	case "clear":
		h.sessions.UpdateAs(key, username, func(st *storefront.State) { st.ClearCart() })
		h.metrics.CartEvent(surface, "clear")
		if err := h.tg.SendText(chatID, "🗑 Cart cleared."); err != nil {
			return err
		}
		return h.renderUI(chatID, userID, 0, false)
	case "note":
		note := strings.TrimSpace(msg.CommandArguments())
		if note == "" {
			h.sessions.UpdateAs(key, username, func(st *storefront.State) {
				st.AwaitingNote = true
				st.AwaitingQuantity = ""
			})
			return h.tg.SendText(chatID, "📝 Send the note for your order (\"-\" removes it, /cancel to stop).")
		}
		return h.applyNote(chatID, userID, note)
	case "contact":
		return h.tg.SendText(chatID, contactText(h.cat))
	case "cancel":
		h.sessions.UpdateAs(key, username, func(st *storefront.State) {
			st.AwaitingNote = false
			st.AwaitingQuantity = ""
		})
		return h.tg.SendText(chatID, "OK, cancelled.")
	case "help":
		return h.tg.SendText(chatID, helpText())
	default:
		return h.tg.SendText(chatID, "Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(ctx context.Context, chatID int64, userID int64, username string, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	key := session.ChatKey(chatID, userID)
	st := h.sessions.Get(key)

	switch {
	case st.AwaitingNote:
		return h.applyNote(chatID, userID, text)
	case st.AwaitingQuantity != "":
		id := st.AwaitingQuantity
		var q int
		h.sessions.UpdateAs(key, username, func(st *storefront.State) {
			q = st.Order.SetDraftText(id, text)
			st.AwaitingQuantity = ""
		})
		h.metrics.CartEvent(surface, "quantity")
		if p, ok := h.cat.Product(id); ok {
			_ = h.tg.SendText(chatID, fmt.Sprintf("Quantity for %s set to %d.", p.Name, q))
		}
		return h.renderUI(chatID, userID, 0, false)
	}

	switch detectIntent(text) {
	case intentCart:
		h.sessions.UpdateAs(key, username, func(st *storefront.State) { st.OpenCart() })
		return h.renderUI(chatID, userID, 0, false)
	case intentCatalog:
		h.sessions.UpdateAs(key, username, func(st *storefront.State) { st.CloseAll() })
		return h.renderUI(chatID, userID, 0, false)
	case intentCheckout:
		return h.sendCheckout(chatID, userID)
	case intentContact:
		return h.tg.SendText(chatID, contactText(h.cat))
	}

	return h.tg.SendText(chatID, "Use the buttons below the catalog to pick products, or /help.")
}

func (h *Handler) applyNote(chatID, userID int64, text string) error {
	note := strings.TrimSpace(text)
	if note == "-" {
		note = ""
	}

	h.sessions.Update(session.ChatKey(chatID, userID), func(st *storefront.State) {
		st.Order.SetNote(note)
		st.AwaitingNote = false
		st.OpenCart()
	})
	h.metrics.CartEvent(surface, "note")

	reply := "📝 Note saved."
	if note == "" {
		reply = "📝 Note removed."
	}
	if err := h.tg.SendText(chatID, reply); err != nil {
		return err
	}
	return h.renderUI(chatID, userID, 0, false)
}

func (h *Handler) sendCheckout(chatID, userID int64) error {
	st := h.sessions.Get(session.ChatKey(chatID, userID))
	link := st.Order.CheckoutLink(h.cat)
	h.metrics.Checkout(surface, st.Order.TotalItemCount())

	text := "Your order message:\n\n" + st.Order.Message(h.cat)
	if st.Order.IsEmpty() {
		text = "Your cart is empty, so this opens a general inquiry:\n\n" + st.Order.Message(h.cat)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("✅ Open in WhatsApp", link)),
	)
	_, err := h.tg.SendTextWithKeyboard(chatID, text, kb, false)
	return err
}

func welcomeText(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("🌸 " + cat.Brand.Name + "\n")
	b.WriteString(cat.Brand.Tagline + "\n\n")
	b.WriteString(cat.Brand.Description + "\n\n")
	if cat.Brand.HeroNote != "" {
		b.WriteString(cat.Brand.HeroNote + "\n\n")
	}
	for _, s := range cat.ServiceHighlights {
		b.WriteString("• " + s.Title + ": " + s.Description + "\n")
	}
	b.WriteString("\nPick products below, set quantities and send the order to us on WhatsApp.")
	return b.String()
}

func contactText(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("📍 " + cat.Brand.Address + "\n")
	b.WriteString("🕒 " + cat.Brand.BusinessHours + "\n")
	b.WriteString("📞 " + cat.Brand.PhoneDisplay + " (" + order.PhoneLink(cat.Brand.PhoneDisplay) + ")\n")
	b.WriteString("✉️ " + cat.Brand.Email + " (" + order.MailLink(cat.Brand.Email) + ")\n")
	b.WriteString("📷 " + cat.Brand.Instagram + "\n")
	if len(cat.Fulfilment) > 0 {
		b.WriteString("\n")
		for _, f := range cat.Fulfilment {
			b.WriteString("• " + f.Title + ": " + f.Description + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func helpText() string {
	return "🛒 How ordering works\n\n" +
		"1. Open a product from /catalog and set the quantity with ➖/➕ (tap the number to type it).\n" +
		"2. Add it to the cart. Quantities changed later update the cart too.\n" +
		"3. /note adds delivery or packing instructions.\n" +
		"4. /checkout gives you a WhatsApp link with the order filled in.\n\n" +
		"/cart shows the cart, /clear empties it, /contact shows the shop details."
}
