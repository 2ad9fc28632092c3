package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/model"
)

// WhatsAppLink builds a wa.me deep link that opens a chat with phone and a
// prefilled message.
func WhatsAppLink(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, text)
}

// newOrderMessage is the text the shop admin receives for a fresh order.
func newOrderMessage(store config.StoreConfig, order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 *New %s Order!* \n\n", store.Name)
	fmt.Fprintf(&b, "*Order ID:* %s\n", order.ID)
	fmt.Fprintf(&b, "*Customer:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "*Total:* %s %s\n", store.Currency, order.Total.StringFixed(2))
	fmt.Fprintf(&b, "*Address:* %s\n\n", order.DeliveryAddress)
	b.WriteString("Please login to the dashboard to assign staff.")
	return b.String()
}
