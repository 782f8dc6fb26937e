package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"saffron-order-desk/internal/debounce"
	"saffron-order-desk/internal/order"
	"saffron-order-desk/internal/session"
	"saffron-order-desk/internal/storefront"
)

const storefrontCallbackPrefix = "sf"

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, storefrontCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else. Send /start for your own.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	key := session.ChatKey(chatID, ownerID)

	answer := ""
	debounced := false

	h.sessions.UpdateAs(key, q.From.UserName, func(st *storefront.State) {
		st.MessageID = msgID

		switch action {
		case "grid":
			st.CloseAll()
		case "open":
			if len(args) >= 1 && !st.OpenProduct(args[0]) {
				answer = "That product is no longer listed."
			}
		case "close":
			st.CloseAll()
		case "img":
			if len(args) >= 1 {
				if args[0] == "prev" {
					st.PrevImage()
				} else {
					st.NextImage()
				}
			}
		case "dq":
			if len(args) >= 2 {
				delta, err := strconv.Atoi(args[1])
				if err != nil {
					return
				}
				qty := st.Order.StepDraft(args[0], delta)
				answer = fmt.Sprintf("Quantity: %d", qty)
				debounced = true
				h.metrics.CartEvent(surface, "quantity")
			}
		case "type":
			if len(args) >= 1 {
				st.AwaitingQuantity = args[0]
				st.AwaitingNote = false
				answer = fmt.Sprintf("Send a quantity between %d and %d.", order.MinQuantity, order.MaxQuantity)
			}
		case "add":
			if len(args) >= 1 {
				if st.AddToCart(args[0]) {
					answer = "Added to cart."
					h.metrics.CartEvent(surface, "add")
				}
			} else if st.AddActiveProductToCart() {
				answer = "Added to cart."
				h.metrics.CartEvent(surface, "add")
			}
		case "cart":
			st.OpenCart()
		case "rm":
			if len(args) >= 1 {
				st.RemoveFromCart(args[0])
				answer = "Removed."
				h.metrics.CartEvent(surface, "remove")
			}
		case "clear":
			st.ClearCart()
			answer = "Cart cleared."
			h.metrics.CartEvent(surface, "clear")
		case "note":
			st.AwaitingNote = true
			st.AwaitingQuantity = ""
			answer = "Send your note as a message."
		}
	})

	if answer == "" {
		answer = "OK"
	}
	_ = h.tg.AnswerCallback(q.ID, answer, false)

	switch action {
	case "note":
		_ = h.tg.SendText(chatID, "📝 Send the note for your order (\"-\" removes it, /cancel to stop).")
	case "type":
		_ = h.tg.SendText(chatID, "🔢 "+answer)
	}

	if debounced && h.debouncer != nil {
		h.debouncer.Trigger(debounce.Request{ChatID: chatID, UserID: ownerID, MessageID: msgID})
		return nil
	}
	return h.renderUI(chatID, ownerID, msgID, true)
}

func (h *Handler) renderUI(chatID int64, userID int64, messageID int, edit bool) error {
	key := session.ChatKey(chatID, userID)
	st := h.sessions.Get(key)
	if messageID == 0 && edit {
		messageID = st.MessageID
	}

	text, preview := storefrontText(st)
	kb := storefrontKeyboard(userID, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb, preview); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb, preview)
	if err != nil {
		return err
	}
	h.sessions.Update(key, func(st *storefront.State) { st.MessageID = msgID })
	return nil
}

// storefrontText renders the current view and reports whether the link
// preview should be shown (only for the product image).
func storefrontText(st storefront.State) (string, bool) {
	switch st.View {
	case storefront.ViewProduct:
		if _, ok := st.ActiveProduct(); ok {
			return productText(st), true
		}
	case storefront.ViewCart:
		return cartText(st), false
	}
	return gridText(st), false
}

func gridText(st storefront.State) string {
	cat := st.Catalog()
	cart := st.Order.Cart()

	var b strings.Builder
	b.WriteString("🌸 " + cat.Brand.Name + " catalog\n\n")
	for i, p := range cat.Products {
		b.WriteString(fmt.Sprintf("%d. %s\n   %s · %s\n", i+1, p.Name, p.Unit, p.PriceRange))
		if q, ok := cart.Quantity(p.ID); ok {
			b.WriteString(fmt.Sprintf("   🛒 in cart: %d\n", q))
		}
	}
	b.WriteString(fmt.Sprintf("\n🛒 Cart: %d items", st.Order.TotalItemCount()))
	return b.String()
}

func productText(st storefront.State) string {
	p, _ := st.ActiveProduct()
	gallery := st.ActiveGallery()

	var b strings.Builder
	b.WriteString(p.Name + "\n")
	if p.Origin != "" {
		b.WriteString("📍 " + p.Origin + "\n")
	}
	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	b.WriteString("\nPack: " + p.Unit + "\n")
	b.WriteString("Price: " + p.PriceRange + "\n")
	if p.BestFor != "" {
		b.WriteString("Best for: " + p.BestFor + "\n")
	}
	if len(p.Highlights) > 0 {
		b.WriteString("\n")
		for _, hl := range p.Highlights {
			b.WriteString("• " + hl + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\nQuantity: %d", st.Order.Draft(p.ID)))
	if q, ok := st.Order.Cart().Quantity(p.ID); ok {
		b.WriteString(fmt.Sprintf(" (in cart: %d)", q))
	}
	b.WriteString("\n")
	if st.AwaitingQuantity == p.ID {
		b.WriteString("🔢 Send the new quantity as a message.\n")
	}

	b.WriteString(fmt.Sprintf("\n🖼 %d/%d %s", st.GalleryIndex+1, len(gallery), st.ActiveImage()))
	return b.String()
}

func cartText(st storefront.State) string {
	cat := st.Catalog()
	lines := st.Order.Lines(cat)

	if len(lines) == 0 {
		return "🛒 Your order cart\n\nSelect products and set quantities to build your order list."
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛒 Your order cart · %d items\n\n", st.Order.TotalItemCount()))
	for i, l := range lines {
		b.WriteString(fmt.Sprintf("%d. %s x %d\n   %s · %s\n", i+1, l.Product.Name, l.Quantity, l.Product.Unit, l.Product.PriceRange))
	}

	if note := strings.TrimSpace(st.Order.Note()); note != "" {
		b.WriteString("\nNotes: " + truncateLine(note, 200) + "\n")
	}
	switch {
	case st.AwaitingNote:
		b.WriteString("\n📝 Send your note as a message.\n")
	case st.AwaitingQuantity != "":
		b.WriteString("\n🔢 Send the new quantity as a message.\n")
	}

	b.WriteString("\nTap a quantity to type it. Send the order on WhatsApp when ready.")
	return b.String()
}

func storefrontKeyboard(ownerID int64, st storefront.State) tgbotapi.InlineKeyboardMarkup {
	switch st.View {
	case storefront.ViewProduct:
		if _, ok := st.ActiveProduct(); ok {
			return productKeyboard(ownerID, st)
		}
	case storefront.ViewCart:
		return cartKeyboard(ownerID, st)
	}
	return gridKeyboard(ownerID, st)
}

func gridKeyboard(ownerID int64, st storefront.State) tgbotapi.InlineKeyboardMarkup {
	cat := st.Catalog()
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, p := range cat.Products {
		addLabel := fmt.Sprintf("🛒 Add %d", st.Order.Draft(p.ID))
		if q, ok := st.Order.Cart().Quantity(p.ID); ok {
			addLabel = fmt.Sprintf("✅ %d in cart", q)
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(truncateLine(p.Name, 28), cb(ownerID, "open", p.ID)),
			tgbotapi.NewInlineKeyboardButtonData(addLabel, cb(ownerID, "add", p.ID)),
		})
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🛒 Cart (%d)", st.Order.TotalItemCount()), cb(ownerID, "cart")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonURL("💬 Chat on WhatsApp", order.WhatsAppLink(cat.Brand.WhatsAppNumber, cat.Brand.DefaultMessage)),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func productKeyboard(ownerID int64, st storefront.State) tgbotapi.InlineKeyboardMarkup {
	p, _ := st.ActiveProduct()
	var rows [][]tgbotapi.InlineKeyboardButton

	if n := len(st.ActiveGallery()); n > 1 {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("◀", cb(ownerID, "img", "prev")),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", st.GalleryIndex+1, n), cb(ownerID, "noop")),
			tgbotapi.NewInlineKeyboardButtonData("▶", cb(ownerID, "img", "next")),
		})
	}

	rows = append(rows, quantityRow(ownerID, p.ID, st.Order.Draft(p.ID), ""))

	addLabel := "🛒 Add to cart"
	if st.Order.Cart().Contains(p.ID) {
		addLabel = "🛒 Update cart"
	}
	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(addLabel, cb(ownerID, "add")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅ Catalog", cb(ownerID, "close")),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🛒 Cart (%d)", st.Order.TotalItemCount()), cb(ownerID, "cart")),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func cartKeyboard(ownerID int64, st storefront.State) tgbotapi.InlineKeyboardMarkup {
	cat := st.Catalog()
	lines := st.Order.Lines(cat)

	if len(lines) == 0 {
		return tgbotapi.NewInlineKeyboardMarkup(
			[]tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData("Browse catalog", cb(ownerID, "grid")),
			},
		)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range lines {
		row := quantityRow(ownerID, l.Product.ID, l.Quantity, truncateLine(l.Product.Name, 16))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖", cb(ownerID, "rm", l.Product.ID)))
		rows = append(rows, row)
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📝 Note", cb(ownerID, "note")),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear", cb(ownerID, "clear")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonURL("✅ Send order on WhatsApp", st.Order.CheckoutLink(cat)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅ Catalog", cb(ownerID, "grid")),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func quantityRow(ownerID int64, productID string, quantity int, label string) []tgbotapi.InlineKeyboardButton {
	middle := strconv.Itoa(quantity)
	if label != "" {
		middle = fmt.Sprintf("%d × %s", quantity, label)
	}
	return []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➖", cb(ownerID, "dq", productID, "-1")),
		tgbotapi.NewInlineKeyboardButtonData(middle, cb(ownerID, "type", productID)),
		tgbotapi.NewInlineKeyboardButtonData("➕", cb(ownerID, "dq", productID, "1")),
	}
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", storefrontCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
