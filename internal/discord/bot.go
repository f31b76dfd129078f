package discord

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"k9log/internal/cleanup"
	"k9log/internal/config"
	"k9log/internal/display"
	"k9log/internal/ledger"
	"k9log/internal/report"
	"k9log/internal/stats"
)

const notificationDuration = 3 * time.Second

// Bot wires the chat transport to the ledger. One message is handled
// to completion before the next; the store is the only shared state.
type Bot struct {
	session *discordgo.Session
	store   ledger.Store
	reports *report.Aggregator
	cleanup *cleanup.Workflow
	tracker *stats.Tracker
	display *display.Manager
	cfg     *config.Config
	log     *slog.Logger
}

func NewBot(cfg *config.Config, store ledger.Store, reports *report.Aggregator, wf *cleanup.Workflow, tracker *stats.Tracker, disp *display.Manager, log *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	bot := &Bot{
		session: session,
		store:   store,
		reports: reports,
		cleanup: wf,
		tracker: tracker,
		display: disp,
		cfg:     cfg,
		log:     log.With("component", "discord"),
	}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	// Start health check server
	go b.startHealthServer()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.tracker.SetRunning(true)
	b.display.Notify("Bot Online!", notificationDuration)
	return nil
}

func (b *Bot) Stop() {
	b.tracker.SetRunning(false)
	b.display.Notify("Bot Shutting Down", notificationDuration)
	b.session.Close()
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return // bot's own messages
	}
	if m.ChannelID != b.cfg.DiscordChannelID {
		return // specific to the channel
	}

	b.tracker.RecordActivity()
	content := strings.TrimSpace(m.Content)

	// A live cleanup session claims all plain text from its owner.
	if !strings.HasPrefix(content, "!") && b.cleanup.Active(m.Author.ID) {
		b.sendCleanupReply(s, m.ChannelID, b.cleanup.Handle(m.Author.ID, content))
		return
	}

	command, args := splitCommand(content)
	switch command {
	case "!walk":
		b.handleWalk(s, m)
	case "!balance":
		b.handleBalance(s, m)
	case "!report":
		b.handleReport(s, m)
	case "!credit":
		b.handleCredit(s, m, args)
	case "!payout":
		b.handlePayout(s, m, args)
	case "!setbalance":
		b.handleSetBalance(s, m, args)
	case "!cleanup":
		b.sendCleanupReply(s, m.ChannelID, b.cleanup.Start(m.Author.ID))
	case "!help":
		b.handleHelp(s, m)
	}
}

func (b *Bot) handleWalk(s *discordgo.Session, m *discordgo.MessageCreate) {
	_, err := b.store.Append(ledger.KindWalk, b.cfg.WalkPrice, "Dog walk")
	if err != nil {
		b.replyError(s, m.ChannelID, "record walk", err)
		return
	}
	balance, err := b.store.CurrentBalance()
	if err != nil {
		b.replyError(s, m.ChannelID, "read balance", err)
		return
	}
	b.display.Notify(fmt.Sprintf("Walk +%s MDL", b.cfg.WalkPrice.StringFixed(0)), notificationDuration)
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"✅ Walk recorded. Current balance: **%s MDL**.", balance.StringFixed(2)))
}

func (b *Bot) handleBalance(s *discordgo.Session, m *discordgo.MessageCreate) {
	balance, err := b.store.CurrentBalance()
	if err != nil {
		b.replyError(s, m.ChannelID, "read balance", err)
		return
	}
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"Current balance: **%s MDL**.", balance.StringFixed(2)))
}

func (b *Bot) handleReport(s *discordgo.Session, m *discordgo.MessageCreate) {
	full, err := b.reports.Full()
	if err != nil {
		b.replyError(s, m.ChannelID, "build report", err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Detailed Report (%s)**\n\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&sb, "Walks completed: **%d**\n", full.WalkCount)
	fmt.Fprintf(&sb, "Total earned from walks: **%s MDL**\n", full.WalkTotal.StringFixed(2))
	fmt.Fprintf(&sb, "Current outstanding balance: **%s MDL**\n", full.Balance.StringFixed(2))
	fmt.Fprintf(&sb, "Total payments/credits received: **%s MDL**\n", full.PaymentCreditTotal.StringFixed(2))

	// Show the most recent entries, truncated like the summary views.
	limit := 10
	if len(full.Transactions) < limit {
		limit = len(full.Transactions)
	}
	if limit > 0 {
		sb.WriteString("\nRecent entries:\n")
		for _, tx := range full.Transactions[:limit] {
			fmt.Fprintf(&sb, "• %s  %s MDL  %s\n",
				tx.Timestamp.Format("2006-01-02"), tx.Amount.StringFixed(2), tx.Description)
		}
		if rest := len(full.Transactions) - limit; rest > 0 {
			fmt.Fprintf(&sb, "...and %d more\n", rest)
		}
	}
	if b.cfg.IsAdmin(m.Author.ID) {
		sb.WriteString("\nAdmin: use `!cleanup` to remove old entries.")
	}
	s.ChannelMessageSend(m.ChannelID, sb.String())
}

func (b *Bot) handleCredit(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "Usage: `!credit <amount> [note]`")
		return
	}
	amount, err := ledger.ParseAmount(args[0])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Invalid amount. Credit must be a positive number.")
		return
	}
	description := fmt.Sprintf("Credit (advance) of %s MDL", amount.StringFixed(2))
	if len(args) > 1 {
		description = strings.Join(args[1:], " ")
	}
	if _, err := b.store.Append(ledger.KindCreditGiven, amount, description); err != nil {
		b.replyError(s, m.ChannelID, "record credit", err)
		return
	}
	balance, err := b.store.CurrentBalance()
	if err != nil {
		b.replyError(s, m.ChannelID, "read balance", err)
		return
	}
	b.display.Notify(fmt.Sprintf("Credit: -%s MDL", amount.StringFixed(0)), notificationDuration)
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"✅ Credit of **%s MDL** recorded. Current balance: **%s MDL**.",
		amount.StringFixed(2), balance.StringFixed(2)))
}

// handlePayout settles the full balance when called without an amount,
// otherwise records a manual payout.
func (b *Bot) handlePayout(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		balance, err := b.store.CurrentBalance()
		if err != nil {
			b.replyError(s, m.ChannelID, "read balance", err)
			return
		}
		if !balance.IsPositive() {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
				"Balance: **%s MDL**. Nothing to pay out.", balance.StringFixed(2)))
			return
		}
		if _, err := b.store.Append(ledger.KindPayment, balance, "Full settlement"); err != nil {
			b.replyError(s, m.ChannelID, "record payout", err)
			return
		}
		newBalance, err := b.store.CurrentBalance()
		if err != nil {
			b.replyError(s, m.ChannelID, "read balance", err)
			return
		}
		b.display.Notify(fmt.Sprintf("Paid Out: %s", balance.StringFixed(0)), notificationDuration)
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
			"✅ **%s MDL** was paid out. Current balance: **%s MDL**.",
			balance.StringFixed(2), newBalance.StringFixed(2)))
		return
	}

	amount, err := ledger.ParseAmount(args[0])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Invalid amount. Usage: `!payout [amount] [note]`")
		return
	}
	description := fmt.Sprintf("Manual cash out of %s MDL", amount.StringFixed(2))
	if len(args) > 1 {
		description = strings.Join(args[1:], " ")
	}
	if _, err := b.store.Append(ledger.KindPayment, amount, description); err != nil {
		b.replyError(s, m.ChannelID, "record payout", err)
		return
	}
	balance, err := b.store.CurrentBalance()
	if err != nil {
		b.replyError(s, m.ChannelID, "read balance", err)
		return
	}
	b.display.Notify(fmt.Sprintf("Cash Out: %s", amount.StringFixed(0)), notificationDuration)
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"✅ Recorded payout of **%s MDL**. Current balance: **%s MDL**.",
		amount.StringFixed(2), balance.StringFixed(2)))
}

func (b *Bot) handleSetBalance(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) != 1 {
		s.ChannelMessageSend(m.ChannelID, "Usage: `!setbalance <amount>`")
		return
	}
	amount, err := ledger.ParseBalanceTarget(args[0])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Invalid amount. Please enter a number.")
		return
	}
	if _, err := b.store.SetBalance(amount); err != nil {
		b.replyError(s, m.ChannelID, "set balance", err)
		return
	}
	s.ChannelMessageSend(m.ChannelID, fmt.Sprintf(
		"Initial balance set to **%s MDL**.", amount.StringFixed(2)))
}

func (b *Bot) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	s.ChannelMessageSend(m.ChannelID,
		"Available commands:\n"+
			"`!walk` - record a dog walk\n"+
			"`!balance` - show current balance\n"+
			"`!report` - detailed report\n"+
			"`!credit <amount> [note]` - record credit given\n"+
			"`!payout [amount] [note]` - record a payment (no amount = full settlement)\n"+
			"`!setbalance <amount>` - set the initial balance\n"+
			"`!cleanup` - admin: clean up the detailed report")
}

// SendWeeklyReport posts the scheduled summary to the configured channel.
func (b *Bot) SendWeeklyReport(ctx context.Context) error {
	weekly, err := b.reports.Weekly(time.Now())
	if err != nil {
		return fmt.Errorf("build weekly summary: %w", err)
	}
	balance, err := b.store.CurrentBalance()
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}

	message := fmt.Sprintf(
		"**Weekly Report (week ending %s)**\n\n"+
			"Walks completed this week: **%d**\n"+
			"Total earned from walks: **%s MDL**\n"+
			"Current outstanding balance: **%s MDL**\n"+
			"Total payments/credits received: **%s MDL**\n\n"+
			"For a detailed report, use `!report`.",
		time.Now().Format("2006-01-02"),
		weekly.WalkCount,
		weekly.WalkTotal.StringFixed(2),
		balance.StringFixed(2),
		weekly.PaymentCreditTotal.StringFixed(2))

	if _, err := b.session.ChannelMessageSend(b.cfg.DiscordChannelID, message); err != nil {
		return fmt.Errorf("send weekly report: %w", err)
	}
	b.log.Info("sent weekly report")
	b.display.Notify("Weekly Report Sent", notificationDuration)
	return nil
}

func (b *Bot) startHealthServer() {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		snap := b.tracker.Snapshot()
		status := "healthy"

		// Check if Discord connection is alive
		if b.session == nil || b.session.State == nil {
			status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		response := fmt.Sprintf(`{
			"status": "%s",
			"uptime": "%s",
			"discord_connected": %t,
			"messages_handled": %d,
			"walks_today": %d,
			"timestamp": "%s"
		}`, status, snap.Uptime.String(), b.session != nil && b.session.State != nil,
			snap.MessageCount, snap.WalksToday, time.Now().Format(time.RFC3339))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	})

	http.ListenAndServe(":8080", nil)
}

func (b *Bot) sendCleanupReply(s *discordgo.Session, channelID string, reply cleanup.Reply) {
	if reply.Ignored || reply.Text == "" {
		return
	}
	s.ChannelMessageSend(channelID, reply.Text)
}

func (b *Bot) replyError(s *discordgo.Session, channelID, op string, err error) {
	b.log.Error("command failed", "op", op, "error", err)
	s.ChannelMessageSend(channelID, fmt.Sprintf("Something went wrong (%s): %v", op, err))
}

// splitCommand separates the leading command word from its arguments.
func splitCommand(content string) (string, []string) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}
