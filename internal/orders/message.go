package orders

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
)

// ContactBaseURL is the click-to-chat endpoint a seller message is sent through.
const ContactBaseURL = "https://api.whatsapp.com/send"

// SellerGroup is the slice of an order's items sold by one seller, keyed by
// the seller's contact handle.
type SellerGroup struct {
	SellerName     string
	SellerWhatsapp string
	Items          []domain.OrderItem
}

// Subtotal is what this seller is owed for the group.
func (g SellerGroup) Subtotal() int64 {
	var total int64
	for _, item := range g.Items {
		total += item.Subtotal()
	}
	return total
}

// GroupBySeller partitions items by seller contact handle. Groups appear in
// the order their seller is first seen; items keep their relative order.
func GroupBySeller(items []domain.OrderItem) []SellerGroup {
	index := make(map[string]int)
	var groups []SellerGroup
	for _, item := range items {
		i, ok := index[item.SellerWhatsapp]
		if !ok {
			i = len(groups)
			index[item.SellerWhatsapp] = i
			groups = append(groups, SellerGroup{
				SellerName:     item.SellerName,
				SellerWhatsapp: item.SellerWhatsapp,
			})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// ComposeSellerMessage builds the plain-text order message for one seller.
func ComposeSellerMessage(marketName string, group SellerGroup, customer domain.Customer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo %s, saya mau pesan dari %s:\n\n", group.SellerName, marketName)
	for _, item := range group.Items {
		fmt.Fprintf(&b, "- *%s*\n", item.Name)
		fmt.Fprintf(&b, "  %d x %s\n", item.Quantity, FormatRupiah(item.Price))
	}
	fmt.Fprintf(&b, "\n*Total Pesanan (untuk Anda): %s*\n", FormatRupiah(group.Subtotal()))
	b.WriteString("\n---\n")
	b.WriteString("*Data Pemesan:*\n")
	fmt.Fprintf(&b, "Nama: %s\n", customer.Name)
	fmt.Fprintf(&b, "WhatsApp: %s\n\n", customer.Whatsapp)
	b.WriteString("Mohon konfirmasi ketersediaan dan info pengirimannya. Terima kasih!")
	return b.String()
}

// ContactLink returns the click-to-chat URL that opens a conversation with
// phone prefilled with text.
func ContactLink(phone, text string) string {
	return ContactBaseURL + "?phone=" + phone + "&text=" + EncodeComponent(text)
}

// EncodeComponent percent-encodes s for use inside a query value. Spaces become
// %20 rather than "+", so any standard URL decoder recovers s exactly.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
