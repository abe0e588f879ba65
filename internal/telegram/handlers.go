package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gogPriceBot/internal/chart"
	"gogPriceBot/internal/gogdb"
	"gogPriceBot/internal/openai"
	"gogPriceBot/internal/resolver"
)

var (
	// /price <gog.com url or numeric product id>
	rePrice = regexp.MustCompile(`^/price(?:@[\w_]+)?\s+(\S+)$`)
	// /low <gog.com url or numeric product id>
	reLow = regexp.MustCompile(`^/low(?:@[\w_]+)?\s+(\S+)$`)
	// /insight <gog.com url or numeric product id>
	reInsight = regexp.MustCompile(`^/insight(?:@[\w_]+)?\s+(\S+)$`)
	// /help or /start
	reHelp = regexp.MustCompile(`^/(help|start)(?:@[\w_]+)?$`)
)

const (
	msgNoData     = "No historical price data available."
	msgFetchError = "Failed to load price history."
)

type Handlers struct {
	api     *tgbotapi.BotAPI
	fetcher *gogdb.Client
	res     *resolver.Resolver
	insight *openai.Insight
}

func NewHandlers(api *tgbotapi.BotAPI, fetcher *gogdb.Client, res *resolver.Resolver, openAIKey string) *Handlers {
	h := &Handlers{api: api, fetcher: fetcher, res: res}
	if openAIKey != "" {
		h.insight = openai.NewInsight(openAIKey)
	}
	return h
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	switch {
	case rePrice.MatchString(txt):
		g := rePrice.FindStringSubmatch(txt)
		h.handlePrice(m.Chat.ID, g[1])

	case reLow.MatchString(txt):
		g := reLow.FindStringSubmatch(txt)
		h.handleLow(m.Chat.ID, g[1])

	case reInsight.MatchString(txt):
		g := reInsight.FindStringSubmatch(txt)
		h.handleInsight(m.Chat.ID, g[1])

	case reHelp.MatchString(txt):
		h.handleHelp(m.Chat.ID)
	}
}

// pipeline resolves the argument and returns the parsed series and metrics.
// When msg is non-empty the caller should reply with it and stop.
func (h *Handlers) pipeline(arg string) (id string, s gogdb.Series, met gogdb.Metrics, msg string) {
	ctx := context.Background()
	id, err := h.res.Resolve(ctx, arg)
	if err != nil {
		if errors.Is(err, resolver.ErrResolveTimeout) {
			return "", s, met, msgFetchError
		}
		return "", s, met, "Give me a gog.com game URL or a numeric product id, e.g. /price 1207658924"
	}
	raw, err := h.fetcher.FetchHistory(ctx, id)
	if err != nil {
		log.Printf("gogdb: fetch %s: %v", id, err)
		if errors.Is(err, gogdb.ErrNotFound) {
			return id, s, met, msgNoData
		}
		return id, s, met, msgFetchError
	}
	s, met = gogdb.ParsePriceHistory(raw, time.Now())
	if len(s.Labels) == 0 {
		return id, s, met, msgNoData
	}
	return id, s, met, ""
}

func (h *Handlers) handlePrice(chatID int64, arg string) {
	id, s, met, msg := h.pipeline(arg)
	if msg != "" {
		h.reply(chatID, msg)
		return
	}
	img, err := chart.Render(id, s, met)
	if err != nil {
		log.Printf("chart: render %s: %v", id, err)
		h.reply(chatID, msgFetchError)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: id + "_prices.png", Bytes: img})
	link := "gogdb.org/product/" + id
	if met.LowestPrice > 0 && met.LowestPrice < met.HighestBasePrice {
		photo.Caption = fmt.Sprintf("Historical low: $%.2f. (Data retrieved from %s.)", met.LowestPrice, link)
	} else {
		photo.Caption = "Data retrieved from " + link + "."
	}
	if _, err := h.api.Send(photo); err != nil {
		log.Printf("telegram: send photo to %d: %v", chatID, err)
	}
}

func (h *Handlers) handleLow(chatID int64, arg string) {
	id, _, met, msg := h.pipeline(arg)
	if msg != "" {
		h.reply(chatID, msg)
		return
	}
	text := fmt.Sprintf("Historical low: $%.2f (highest base price $%.2f)\ngogdb.org/product/%s",
		met.LowestPrice, met.HighestBasePrice, id)
	h.reply(chatID, text)
}

func (h *Handlers) handleInsight(chatID int64, arg string) {
	if h.insight == nil {
		h.reply(chatID, "Insight is not configured on this bot.")
		return
	}
	id, s, met, msg := h.pipeline(arg)
	if msg != "" {
		h.reply(chatID, msg)
		return
	}
	h.reply(chatID, "Looking at the price history…")
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()
	out, err := h.insight.Comment(ctx, id, s, met)
	if err != nil {
		h.reply(chatID, "Insight failed: "+err.Error())
		return
	}
	h.reply(chatID, out)
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /price URL|ID - Price history chart with the historical low\n" +
		"- /low URL|ID - Historical low and highest base price as text\n" +
		"- /insight URL|ID - Short commentary on the price trend\n" +
		"\nURL is a gog.com game page; ID is the numeric catalog id.\n" +
		"Prices are the US/USD view of GOGDB data, cached for 24h."
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("telegram: send to %d: %v", chatID, err)
	}
}
