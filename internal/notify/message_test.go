package notify

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

func sampleListings(n int) []model.Listing {
	out := make([]model.Listing, 0, n)
	for i := 0; i < n; i++ {
		cents := int64((i + 1) * 2500)
		out = append(out, model.Listing{
			ItemID:      fmt.Sprintf("m%03d", i),
			Title:       fmt.Sprintf("Fiets %d", i),
			Description: "<p>Goede <b>staat</b></p>",
			PriceInfo:   &model.PriceInfo{PriceCents: &cents},
			ImageURLs:   []string{"//img.example/a.jpg"},
			VipURL:      fmt.Sprintf("/v/fietsen/m%03d", i),
			Date:        "vandaag 10:00",
		})
	}
	return out
}

func TestBuildTelegramMessage_CapsListings(t *testing.T) {
	job := &model.MonitorJob{Name: "fietsen"}
	msg := buildTelegramMessage(job, sampleListings(12))

	if got := strings.Count(msg, "View Listing"); got != 10 {
		t.Errorf("rendered %d listings, want 10", got)
	}
	if !strings.Contains(msg, "... and 2 more listings") {
		t.Errorf("missing overflow trailer in:\n%s", msg)
	}
	if !strings.Contains(msg, "Found 12 new listing(s)") {
		t.Errorf("header should count all listings, not the shown subset")
	}
}

func TestBuildTelegramMessage_StripsDescriptionHTML(t *testing.T) {
	job := &model.MonitorJob{Name: "fietsen"}
	msg := buildTelegramMessage(job, sampleListings(1))

	if strings.Contains(msg, "<p>") || strings.Contains(msg, "<b>Goede") {
		t.Errorf("description markup should be stripped:\n%s", msg)
	}
	if !strings.Contains(msg, "Goede staat") {
		t.Errorf("description text should survive stripping:\n%s", msg)
	}
}

func TestBuildEmailBody_RendersAllListings(t *testing.T) {
	job := &model.MonitorJob{Name: "fietsen"}
	body := buildEmailBody(job, sampleListings(12))

	if got := strings.Count(body, "class='listing'"); got != 12 {
		t.Errorf("rendered %d listing blocks, want 12 (email is not capped)", got)
	}
	if !strings.Contains(body, "Job: fietsen") {
		t.Error("job name missing from email body")
	}
	if !strings.Contains(body, "https://www.marktplaats.nl/v/fietsen/m000") {
		t.Error("listing link should be absolute")
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(nil); got != "Price not available" {
		t.Errorf("formatPrice(nil) = %q", got)
	}

	small := 4.5
	if got := formatPrice(&small); got != "€4,50" {
		t.Errorf("formatPrice(4.5) = %q, want Dutch decimal comma", got)
	}

	large := 1234.56
	if got := formatPrice(&large); !strings.Contains(got, "1.234,56") {
		t.Errorf("formatPrice(1234.56) = %q, want Dutch thousands separator", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate below limit = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcde..." {
		t.Errorf("truncate above limit = %q", got)
	}
	if got := truncate("gereviseerd, één dag geleden geëtaleerd", 16); got != "gereviseerd, één..." {
		t.Errorf("truncate over multi-byte text = %q", got)
	}
	if got := truncate("éééééé", 3); !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
}
