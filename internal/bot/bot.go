package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"family-planner/internal/model"
	"family-planner/internal/repository"
	"family-planner/internal/schedule"
	"family-planner/internal/service"
)

// Bot aggregates the Telegram API with the planner services. It is both the
// interactive chat front-end and the reminder delivery transport.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	familyRepo  *repository.FamilyRepository
	helperRepo  *repository.HelperRepository
	categorySvc *service.CategoryService
	taskSvc     *service.TaskService
	loc         *time.Location
}

func New(
	token string,
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	helperRepo *repository.HelperRepository,
	categorySvc *service.CategoryService,
	taskSvc *service.TaskService,
	loc *time.Location,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	if loc == nil {
		loc = time.Local
	}

	return &Bot{
		api:         api,
		userRepo:    userRepo,
		familyRepo:  familyRepo,
		helperRepo:  helperRepo,
		categorySvc: categorySvc,
		taskSvc:     taskSvc,
		loc:         loc,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

// Send delivers one reminder message. It implements service.Transport; the
// address is the chat id as a decimal string.
func (b *Bot) Send(_ context.Context, address, text string) (string, error) {
	chatID, err := strconv.ParseInt(address, 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad chat address %q: %w", address, err)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := b.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send reminder: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	user, err := b.ensureUser(ctx, msg)
	if err != nil {
		return err
	}

	if msg.IsCommand() && msg.Command() == "start" {
		return b.handleStart(msg, user)
	}

	text := msg.Text
	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		text = strings.TrimSpace(msg.Command() + " " + msg.CommandArguments())
	}

	cmd := ParseCommand(text)

	switch cmd.Kind {
	case CmdHelp:
		return b.handleHelp(msg)
	case CmdNewFamily:
		return b.handleNewFamily(ctx, msg, user, cmd.Args)
	case CmdJoin:
		return b.handleJoin(ctx, msg, user, cmd.Args)
	}

	// Everything below needs a family.
	if user.FamilyID == "" {
		return b.sendText(msg.Chat.ID,
			"👪 You are not in a family yet.\n\n"+
				"• <code>newfamily Smith</code> — create one\n"+
				"• <code>join ABC123</code> — join with an invite code")
	}

	switch cmd.Kind {
	case CmdStatus:
		return b.handleDay(ctx, msg, user, time.Now().In(b.loc), "Today")
	case CmdTomorrow:
		return b.handleDay(ctx, msg, user, time.Now().In(b.loc).AddDate(0, 0, 1), "Tomorrow")
	case CmdWeek:
		return b.handleWeek(ctx, msg, user)
	case CmdAdd:
		if cmd.Args == "" {
			return b.sendText(msg.Chat.ID, "❌ Please name the task.\nExample: <code>add buy groceries</code>")
		}
		return b.handleAdd(ctx, msg, user, cmd.Args)
	case CmdDone:
		if cmd.Args == "" {
			return b.sendText(msg.Chat.ID, "❌ Which task is done?\nExample: <code>done groceries</code>")
		}
		return b.handleDone(ctx, msg, user, cmd.Args)
	case CmdDelete:
		return b.handleDelete(ctx, msg, user, cmd.Args)
	case CmdFamily:
		return b.handleFamily(ctx, msg, user)
	case CmdHelpers:
		return b.handleHelpers(ctx, msg, user)
	case CmdAddHelper:
		return b.handleAddHelper(ctx, msg, user, cmd.Args)
	case CmdRemoveHelper:
		return b.handleRemoveHelper(ctx, msg, user, cmd.Args)
	default:
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"🤔 I didn't understand: %q\n\nSend <code>help</code> for the list of commands.", cmd.Raw))
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message, user *model.User) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I'm the family planner: I keep track of household tasks and remind you in time.</b>\n\n"+
			"Commands:\n"+
			"• <code>today</code> — tasks for today\n"+
			"• <code>tomorrow</code> — tasks for tomorrow\n"+
			"• <code>week</code> — weekly summary\n"+
			"• <code>add [task]</code> — add a task for today\n"+
			"• <code>done [task]</code> — mark a task complete\n"+
			"• <code>help</code> — hints",
		escape(name),
	)
	if user.FamilyID == "" {
		text += "\n\nStart with <code>newfamily [name]</code> or <code>join [invite code]</code>."
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "🤖 <b>Available commands</b>\n\n" +
		"📋 <b>Viewing tasks:</b>\n" +
		"• <code>today</code> / <code>status</code> — tasks for today\n" +
		"• <code>tomorrow</code> — tasks for tomorrow\n" +
		"• <code>week</code> — weekly summary\n\n" +
		"✏️ <b>Managing tasks:</b>\n" +
		"• <code>add [task]</code> — add a task for today\n" +
		"• <code>done [task]</code> — mark a task complete\n" +
		"• <code>delete [task]</code> — remove a task\n\n" +
		"👪 <b>Family:</b>\n" +
		"• <code>newfamily [name]</code> — create a family\n" +
		"• <code>join [code]</code> — join by invite code\n" +
		"• <code>family</code> — members and invite code\n" +
		"• <code>helpers</code> — list outside helpers\n" +
		"• <code>addhelper [name]</code> / <code>removehelper [name]</code>"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleNewFamily(ctx context.Context, msg *tgbotapi.Message, user *model.User, name string) error {
	if user.FamilyID != "" {
		return b.sendText(msg.Chat.ID, "You already belong to a family.")
	}
	if name == "" {
		return b.sendText(msg.Chat.ID, "❌ Please name the family.\nExample: <code>newfamily Smith</code>")
	}

	family, err := b.familyRepo.Create(ctx, name)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not create the family: %s", escape(err.Error())))
	}
	if err := b.userRepo.SetFamily(ctx, user, family.ID); err != nil {
		return err
	}
	if err := b.categorySvc.SeedDefaults(ctx, family.ID); err != nil {
		log.Printf("seed categories for family %s: %v", family.ID, err)
	}

	log.Printf("[info] family created id=%s by user=%s", family.ID, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Family <b>%s</b> created!\n\nInvite code: <code>%s</code>\nOthers can join with <code>join %s</code>.",
		escape(family.Name), family.InviteCode, family.InviteCode))
}

func (b *Bot) handleJoin(ctx context.Context, msg *tgbotapi.Message, user *model.User, code string) error {
	if user.FamilyID != "" {
		return b.sendText(msg.Chat.ID, "You already belong to a family.")
	}
	family, err := b.familyRepo.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, "❌ No family with that invite code.")
		}
		return err
	}
	if err := b.userRepo.SetFamily(ctx, user, family.ID); err != nil {
		return err
	}
	log.Printf("[info] user=%s joined family=%s", user.ID, family.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Welcome to <b>%s</b>!", escape(family.Name)))
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message, user *model.User, date time.Time, label string) error {
	tasks, err := b.taskSvc.ListFamilyTasks(ctx, user.FamilyID)
	if err != nil {
		return err
	}

	occs := schedule.ForDate(tasks, date)
	header := fmt.Sprintf("📅 <b>%s — %s</b>\n", label, date.Format("Mon, Jan 2"))
	if len(occs) == 0 {
		return b.sendText(msg.Chat.ID, header+"\nNothing planned! 🎉")
	}

	icons, names, err := b.lookupMaps(ctx, user.FamilyID)
	if err != nil {
		return err
	}

	completed := 0
	for _, occ := range occs {
		if occ.Task.Completed {
			completed++
		}
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(fmt.Sprintf("✨ %d/%d completed\n\n", completed, len(occs)))
	for _, occ := range occs {
		sb.WriteString(formatOccurrence(occ, icons, names))
		sb.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	tasks, err := b.taskSvc.ListFamilyTasks(ctx, user.FamilyID)
	if err != nil {
		return err
	}

	today := time.Now().In(b.loc)
	weekStart := schedule.WeekStart(today)

	var sb strings.Builder
	sb.WriteString("📆 <b>Weekly summary</b>\n")
	sb.WriteString(fmt.Sprintf("%s – %s\n\n",
		weekStart.Format("Jan 2"), weekStart.AddDate(0, 0, 6).Format("Jan 2")))

	total, totalDone := 0, 0
	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		occs := schedule.ForDate(tasks, date)
		if len(occs) == 0 {
			continue
		}
		done := 0
		for _, occ := range occs {
			if occ.Task.Completed {
				done++
			}
		}
		total += len(occs)
		totalDone += done
		emoji := "📋"
		if done == len(occs) {
			emoji = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%s</b> (%s): %d/%d\n",
			emoji, date.Format("Monday"), date.Format("1/2"), done, len(occs)))
	}

	if total == 0 {
		return b.sendText(msg.Chat.ID, "📆 <b>Weekly summary</b>\n\nNothing planned this week!")
	}
	sb.WriteString(fmt.Sprintf("\n📊 Total: %d/%d tasks completed", totalDone, total))
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, user *model.User, title string) error {
	today := time.Now().In(b.loc)
	userID := user.ID

	task, err := b.taskSvc.CreateTask(ctx, user.FamilyID, service.TaskInput{
		Title:      strings.TrimSpace(title),
		AssignedTo: &userID,
		DayOfWeek:  int(today.Weekday()),
		WeekStart:  schedule.WeekStartISO(today),
		Recurrence: model.RecurrenceNone,
	})
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Could not create the task: %s", escape(err.Error())))
	}

	log.Printf("[info] task created id=%s family=%s via chat", task.ID, user.FamilyID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Task added!\n\n📌 <b>%s</b>\n📅 Today (%s)", escape(task.Title), today.Format("Monday")))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message, user *model.User, text string) error {
	task, matches, err := b.taskSvc.CompleteByTitle(ctx, user.FamilyID, text)
	if err != nil {
		return err
	}

	if task != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Great! Task completed:\n\n<b>%s</b>", escape(task.Title)))
	}

	if len(matches) > 1 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("🔍 Found %d matching tasks:\n\n", len(matches)))
		for i, m := range matches {
			if i == 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(m.Title)))
		}
		sb.WriteString("\nPlease be more specific.")
		return b.sendText(msg.Chat.ID, sb.String())
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ No open task matching %q.", text))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, user *model.User, text string) error {
	if text == "" {
		return b.sendText(msg.Chat.ID, "❌ Which task should I remove?\nExample: <code>delete groceries</code>")
	}

	task, matches, err := b.taskSvc.DeleteByTitle(ctx, user.FamilyID, text)
	if err != nil {
		return err
	}

	if task != nil {
		log.Printf("[info] task deleted id=%s family=%s via chat", task.ID, user.FamilyID)
		if task.IsOverride() {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(
				"🗑 Removed <b>%s</b>. The original series occurrence is back on that day.", escape(task.Title)))
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Removed <b>%s</b>.", escape(task.Title)))
	}

	if len(matches) > 1 {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("🔍 Found %d matching tasks:\n\n", len(matches)))
		for i, m := range matches {
			if i == 5 {
				break
			}
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(m.Title)))
		}
		sb.WriteString("\nPlease be more specific.")
		return b.sendText(msg.Chat.ID, sb.String())
	}

	return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ No open task matching %q.", text))
}

func (b *Bot) handleFamily(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	family, err := b.familyRepo.FindByID(ctx, user.FamilyID)
	if err != nil {
		return err
	}
	members, err := b.userRepo.ListByFamily(ctx, user.FamilyID)
	if err != nil {
		return err
	}
	helpers, err := b.helperRepo.ListByFamily(ctx, user.FamilyID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👪 <b>%s</b>\n", escape(family.Name)))
	sb.WriteString(fmt.Sprintf("Invite code: <code>%s</code>\n\n", family.InviteCode))
	sb.WriteString("Members:\n")
	for _, m := range members {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(m.DisplayName)))
	}
	if len(helpers) > 0 {
		sb.WriteString("\nHelpers:\n")
		for _, h := range helpers {
			sb.WriteString(fmt.Sprintf("• %s 🤝\n", escape(h.Name)))
		}
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleHelpers(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	helpers, err := b.helperRepo.ListByFamily(ctx, user.FamilyID)
	if err != nil {
		return err
	}
	if len(helpers) == 0 {
		return b.sendText(msg.Chat.ID,
			"🤝 No helpers yet.\nAdd one with <code>addhelper [name]</code>.")
	}

	var sb strings.Builder
	sb.WriteString("🤝 <b>Helpers</b>\n\n")
	for _, h := range helpers {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(h.Name)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleAddHelper(ctx context.Context, msg *tgbotapi.Message, user *model.User, name string) error {
	if name == "" {
		return b.sendText(msg.Chat.ID, "❌ Please name the helper.\nExample: <code>addhelper Maria</code>")
	}
	helper, err := b.helperRepo.Create(ctx, user.FamilyID, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	log.Printf("[info] helper created id=%s family=%s", helper.ID, user.FamilyID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf(
		"✅ Helper <b>%s</b> added. Tasks assigned to them won't trigger chat reminders.", escape(helper.Name)))
}

func (b *Bot) handleRemoveHelper(ctx context.Context, msg *tgbotapi.Message, user *model.User, name string) error {
	if name == "" {
		return b.sendText(msg.Chat.ID, "❌ Which helper should I remove?\nExample: <code>removehelper Maria</code>")
	}
	helpers, err := b.helperRepo.ListByFamily(ctx, user.FamilyID)
	if err != nil {
		return err
	}
	for _, h := range helpers {
		if strings.EqualFold(h.Name, strings.TrimSpace(name)) {
			if err := b.helperRepo.Delete(ctx, user.FamilyID, h.ID); err != nil {
				return err
			}
			return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Helper <b>%s</b> removed.", escape(h.Name)))
		}
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("❌ No helper named %q.", name))
}

// SendMorningDigest sends every reachable user their day ahead: today's
// occurrences plus a short look at the next days.
func (b *Bot) SendMorningDigest(ctx context.Context) error {
	users, err := b.userRepo.ListReachable(ctx)
	if err != nil {
		return err
	}
	today := time.Now().In(b.loc)

	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tasks, err := b.taskSvc.ListFamilyTasks(ctx, user.FamilyID)
		if err != nil {
			log.Printf("load tasks for family %s: %v", user.FamilyID, err)
			continue
		}
		icons, names, err := b.lookupMaps(ctx, user.FamilyID)
		if err != nil {
			log.Printf("load lookups for family %s: %v", user.FamilyID, err)
			continue
		}

		text := renderDigest(tasks, today, icons, names)
		if text == "" {
			continue
		}
		if err := b.sendText(user.ChatID, text); err != nil {
			log.Printf("send digest to %d: %v", user.ChatID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	name := strings.TrimSpace(strings.TrimSpace(msg.From.FirstName) + " " + strings.TrimSpace(msg.From.LastName))
	if name == "" {
		name = msg.From.UserName
	}
	return b.userRepo.UpsertFromTelegram(ctx, msg.From.ID, msg.Chat.ID, name)
}

// lookupMaps builds category-icon and assignee-name lookups for rendering.
// Missing entries render as absent fields, never as errors.
func (b *Bot) lookupMaps(ctx context.Context, familyID string) (map[string]string, map[string]string, error) {
	icons, err := b.categorySvc.IconMap(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}

	names := make(map[string]string)
	members, err := b.userRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range members {
		names[m.ID] = m.DisplayName
	}
	helpers, err := b.helperRepo.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, nil, err
	}
	for _, h := range helpers {
		names[h.ID] = h.Name
	}
	return icons, names, nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}
