// Package notify renders and dispatches new-listing notifications over the
// configured channels (email, Telegram).
package notify

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/marktplaats"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// Telegram enforces a hard message-length limit; the listing enumeration is
// capped and a "+N more" trailer appended past this many entries.
const telegramListingCap = 10

var (
	dutchPrinter = message.NewPrinter(language.Dutch)
	htmlTagRe    = regexp.MustCompile(`<.*?>`)
)

func formatPrice(euros *float64) string {
	if euros == nil {
		return "Price not available"
	}
	return dutchPrinter.Sprintf("€%.2f", *euros)
}

// truncate caps s at max runes. Byte slicing would split multi-byte
// characters (Dutch descriptions carry é/ë) and emit invalid UTF-8.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func stripHTML(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

func listingURL(l model.Listing) string {
	return marktplaats.ListingBaseURL + l.VipURL
}

func buildEmailBody(job *model.MonitorJob, listings []model.Listing) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #e30613; color: white; padding: 20px; text-align: center; }
        .listing { border: 1px solid #ddd; margin: 20px 0; padding: 15px; border-radius: 5px; }
        .listing img { max-width: 100%; height: auto; }
        .price { font-size: 24px; color: #e30613; font-weight: bold; }
        .button { background-color: #e30613; color: white; padding: 10px 20px; text-decoration: none; display: inline-block; border-radius: 5px; }
    </style>
</head>
<body>
    <div class='container'>
        <div class='header'>
            <h1>New Listings Found!</h1>
`)
	fmt.Fprintf(&b, "            <p>Job: %s</p>\n        </div>\n", job.Name)
	fmt.Fprintf(&b, "        <p>We found %d new listing(s) matching your criteria:</p>\n", len(listings))

	for _, l := range listings {
		b.WriteString("        <div class='listing'>\n")
		if img := l.FirstImageURL(); img != "" {
			fmt.Fprintf(&b, "            <img src='%s' alt='%s' />\n", img, l.Title)
		}
		fmt.Fprintf(&b, "            <h2>%s</h2>\n", l.Title)
		fmt.Fprintf(&b, "            <p class='price'>%s</p>\n", formatPrice(l.PriceEuros()))
		fmt.Fprintf(&b, "            <p>%s</p>\n", truncate(l.Description, 200))
		fmt.Fprintf(&b, "            <p><strong>Posted:</strong> %s</p>\n", l.Date)
		fmt.Fprintf(&b, "            <a href='%s' class='button'>View Listing</a>\n", listingURL(l))
		b.WriteString("        </div>\n")
	}

	b.WriteString("    </div>\n</body>\n</html>")
	return b.String()
}

func buildTelegramMessage(job *model.MonitorJob, listings []model.Listing) string {
	var b strings.Builder
	b.WriteString("🔔 <b>New Listings Found!</b>\n")
	fmt.Fprintf(&b, "📋 Job: <b>%s</b>\n", job.Name)
	fmt.Fprintf(&b, "📊 Found %d new listing(s)\n\n", len(listings))

	shown := listings
	if len(shown) > telegramListingCap {
		shown = shown[:telegramListingCap]
	}

	for _, l := range shown {
		b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Fprintf(&b, "<b>%s</b>\n", l.Title)
		fmt.Fprintf(&b, "💰 <b>%s</b>\n", formatPrice(l.PriceEuros()))
		fmt.Fprintf(&b, "📅 %s\n", l.Date)
		if desc := stripHTML(truncate(l.Description, 150)); desc != "" {
			fmt.Fprintf(&b, "\n%s\n", desc)
		}
		fmt.Fprintf(&b, "\n🔗 <a href=\"%s\">View Listing</a>\n\n", listingURL(l))
	}

	if len(listings) > telegramListingCap {
		fmt.Fprintf(&b, "... and %d more listings\n", len(listings)-telegramListingCap)
	}

	return b.String()
}
