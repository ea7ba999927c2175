package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"hotel_agency/internal/app"
	"hotel_agency/internal/domain"
)

type command struct {
	usage string
	auth  bool
	run   func(ctx context.Context, a *admin, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":              {"-phone P -password S", false, cmdLogin},
		"logout":             {"forget the stored session", false, cmdLogout},
		"whoami":             {"show the stored session", true, cmdWhoami},
		"list":               {"<entity> [-page N] [-lang L]", true, cmdList},
		"get":                {"<entity> <id>", true, cmdGet},
		"create":             {"<entity> -file form.json", true, cmdCreate},
		"update":             {"<entity> <id> -file form.json", true, cmdUpdate},
		"delete":             {"<entity> <id> [-yes] [-page N]", true, cmdDelete},
		"activate":           {"<tours|partners> <id>", true, cmdToggle(true)},
		"deactivate":         {"<tours|partners> <id>", true, cmdToggle(false)},
		"upload":             {"<entity> <path>", true, cmdUpload},
		"booking-status":     {"[on|off]", true, cmdBookingStatus},
		"bookings":           {"[-page N] [-xlsx out.xlsx]", true, cmdBookings},
		"booking-set-status": {"<id> <status>", true, cmdBookingSetStatus},
		"booking-add":        {"-rooms 7,8 -in D -out D -name N -phone P -passport S [-email E] [-breakfast] [-color C] [-note T] [-cook]", true, cmdBookingAdd},
		"rooms":              {"list rooms", true, cmdRooms},
		"clients":            {"list registered guests", true, cmdClients},
		"inquiries":          {"[-page N] [-xlsx out.xlsx]", true, cmdInquiries},
		"inquiry-set-status": {"<id> <1..5>", true, cmdInquirySetStatus},
		"inquiry-del":        {"<id> [-yes]", true, cmdInquiryDel},
		"users":              {"list staff accounts", true, cmdUsers},
		"roles":              {"list assignable roles", true, cmdRoles},
		"user-add":           {"-name N -phone P -password S -role R", true, cmdUserAdd},
		"user-edit":          {"<id> -name N -phone P [-password S]", true, cmdUserEdit},
		"user-del":           {"<id> [-yes]", true, cmdUserDel},
		"chats":              {"list chats with their latest message", true, cmdChats},
		"chat-new":           {"-name N -members 1,2", true, cmdChatNew},
		"chat-messages":      {"<chat id>", true, cmdChatMessages},
		"chat-send":          {"<chat id> <text>", true, cmdChatSend},
		"chat-edit":          {"<chat id> <message id> <text>", true, cmdChatEdit},
		"chat-watch":         {"<chat id>", true, cmdChatWatch},
		"submissions":        {"[-limit N] recent booking submissions", false, cmdSubmissions},
		"cache-flush":        {"[section] drop cached public views", false, cmdCacheFlush},
		"stats":              {"[-json] dashboard counts", true, cmdStats},
	}
}

func flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse accepts flags before and after positional arguments.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func need(pos []string, n int, what string) error {
	if len(pos) < n {
		return fmt.Errorf("missing %s", what)
	}
	return nil
}

func (a *admin) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func (a *admin) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func (a *admin) crud(name string) (*app.CRUD, error) {
	s, ok := domain.LookupSchema(name)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q (have %s)", name, strings.Join(domain.SchemaNames(), ", "))
	}
	return app.NewCRUD(s, a.api, a.client.MediaURL), nil
}

func cmdLogin(ctx context.Context, a *admin, args []string) error {
	fs := flags("login")
	phone := fs.String("phone", "", "phone")
	password := fs.String("password", "", "password")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	sess, route, err := a.session.Login(ctx, *phone, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", sess.PrimaryRole(), route)
	return nil
}

func cmdLogout(ctx context.Context, a *admin, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *admin, _ []string) error {
	sess, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	roles := make([]string, 0, len(sess.Roles))
	for _, r := range sess.Roles {
		roles = append(roles, r.Name)
	}
	route, ok := domain.LandingRoute(sess.PrimaryRole())
	if !ok {
		route = "/"
	}
	fmt.Fprintf(a.out, "phone: %s\nroles: %s\nhome:  %s\n", sess.Phone, strings.Join(roles, ", "), route)
	return nil
}

func cmdList(ctx context.Context, a *admin, args []string) error {
	fs := flags("list")
	page := fs.Int("page", 0, "page")
	lang := fs.String("lang", "", "locale")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 1, "entity"); err != nil {
		return err
	}
	switch pos[0] {
	case "bookings":
		return cmdBookings(ctx, a, []string{"-page", strconv.Itoa(*page)})
	case "inquiries":
		return cmdInquiries(ctx, a, []string{"-page", strconv.Itoa(*page)})
	}
	c, err := a.crud(pos[0])
	if err != nil {
		return err
	}
	l, err := a.locale(ctx, *lang)
	if err != nil {
		return err
	}
	out, pager, err := c.List(ctx, *page)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLANGS\tACTIVE")
	for _, card := range c.Cards(out, l) {
		active := "-"
		if card.Active != nil {
			active = strconv.FormatBool(*card.Active)
		}
		langs := make([]string, 0, len(card.Locales))
		for _, x := range card.Locales {
			langs = append(langs, string(x))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", card.ID, card.Title, strings.Join(langs, ","), active)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printPager(pager, out.TotalElements)
	return nil
}

func (a *admin) printPager(p domain.Pager, total int) {
	fmt.Fprintf(a.out, "page %d of %d (%d items)", p.Current+1, max(p.Total, 1), total)
	if p.HasPrev() {
		fmt.Fprintf(a.out, "  prev: -page %d", p.Prev().Current)
	}
	if p.HasNext() {
		fmt.Fprintf(a.out, "  next: -page %d", p.Next().Current)
	}
	fmt.Fprintln(a.out)
}

// locale resolves -lang, then the remembered language, then uz. An explicit
// choice is remembered for later commands.
func (a *admin) locale(ctx context.Context, flagVal string) (domain.Locale, error) {
	if flagVal != "" {
		l, ok := domain.ParseLocale(flagVal)
		if !ok {
			return "", &domain.ValidationError{Field: "lang", Message: "use uz, ru, en or turk"}
		}
		return l, a.store.Set(ctx, domain.KeyAppLang, string(l))
	}
	v, _, err := a.store.Get(ctx, domain.KeyAppLang)
	if err != nil {
		return "", err
	}
	l, _ := domain.ParseLocale(v)
	return l, nil
}

func cmdGet(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 2, "entity and id"); err != nil {
		return err
	}
	c, err := a.crud(args[0])
	if err != nil {
		return err
	}
	entity, err := c.Get(ctx, args[1])
	if err != nil {
		return err
	}
	form, preview := c.Edit(entity)
	if preview != "" {
		fmt.Fprintln(a.out, "preview:", preview)
	}
	return a.printJSON(form)
}

func readForm(path string) (domain.Form, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f domain.Form
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func cmdCreate(ctx context.Context, a *admin, args []string) error {
	fs := flags("create")
	file := fs.String("file", "", "form JSON")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 1, "entity"); err != nil {
		return err
	}
	c, err := a.crud(pos[0])
	if err != nil {
		return err
	}
	f, err := readForm(*file)
	if err != nil {
		return err
	}
	out, err := c.Create(ctx, f)
	if err != nil {
		return err
	}
	a.invalidate(ctx, pos[0])
	return a.printJSON(out)
}

func cmdUpdate(ctx context.Context, a *admin, args []string) error {
	fs := flags("update")
	file := fs.String("file", "", "form JSON")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 2, "entity and id"); err != nil {
		return err
	}
	c, err := a.crud(pos[0])
	if err != nil {
		return err
	}
	f, err := readForm(*file)
	if err != nil {
		return err
	}
	out, err := c.Update(ctx, pos[1], f)
	if err != nil {
		return err
	}
	a.invalidate(ctx, pos[0])
	return a.printJSON(out)
}

func cmdDelete(ctx context.Context, a *admin, args []string) error {
	fs := flags("delete")
	yes := fs.Bool("yes", false, "skip confirmation")
	page := fs.Int("page", 0, "page to reload")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 2, "entity and id"); err != nil {
		return err
	}
	c, err := a.crud(pos[0])
	if err != nil {
		return err
	}
	confirm := a.confirm
	if *yes {
		confirm = func(string) bool { return true }
	}
	out, pager, err := c.Delete(ctx, pos[1], confirm, *page)
	if errors.Is(err, domain.ErrConfirmationRequired) {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	a.invalidate(ctx, pos[0])
	fmt.Fprintln(a.out, "deleted", pos[1])
	a.printPager(pager, out.TotalElements)
	return nil
}

func cmdToggle(active bool) func(ctx context.Context, a *admin, args []string) error {
	return func(ctx context.Context, a *admin, args []string) error {
		if err := need(args, 2, "entity and id"); err != nil {
			return err
		}
		c, err := a.crud(args[0])
		if err != nil {
			return err
		}
		if _, err := c.SetActive(ctx, args[1], active); err != nil {
			return err
		}
		a.invalidate(ctx, args[0])
		fmt.Fprintf(a.out, "%s %s active=%v\n", args[0], args[1], active)
		return nil
	}
}

func cmdUpload(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 2, "entity and path"); err != nil {
		return err
	}
	c, err := a.crud(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(args[1])))
	if ct == "" {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		ct = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	id, err := c.Upload(ctx, app.File{Name: filepath.Base(args[1]), ContentType: ct, Size: st.Size(), Content: f})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func cmdBookingStatus(ctx context.Context, a *admin, args []string) error {
	s := app.NewSettings(a.api)
	var on bool
	var err error
	switch {
	case len(args) == 0:
		on, err = s.BookingStatus(ctx)
	case args[0] == "on" || args[0] == "off":
		on, err = s.SetBookingStatus(ctx, args[0] == "on")
		if err == nil {
			a.invalidate(ctx, app.SectionBooking)
		}
	default:
		return fmt.Errorf("booking-status takes on or off")
	}
	if err != nil {
		return err
	}
	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintln(a.out, "online booking:", state)
	return nil
}

func export(path string, write func(io.Writer) (int, error)) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func cmdBookings(ctx context.Context, a *admin, args []string) error {
	fs := flags("bookings")
	page := fs.Int("page", 0, "page")
	out := fs.String("xlsx", "", "export every booking to this file")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	r := app.NewReception(a.api)
	if *out != "" {
		n, err := export(*out, func(w io.Writer) (int, error) { return r.ExportBookings(ctx, w) })
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d bookings written to %s\n", n, *out)
		return nil
	}
	list, err := r.RoomBookings(ctx, *page)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGUEST\tPHONE\tROOM\tCHECK-IN\tCHECK-OUT\tGUESTS\tSTATUS")
	for _, b := range list.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n", b.ID, b.Client.FullName, b.Client.Phone,
			b.Room.RoomType.Name, b.CheckInTime, b.CheckOutTime, b.GuestsCount, b.BookingStatus)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printPager(list.Pager, list.TotalElements)
	return nil
}

func atoi64(s, what string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", what)
	}
	return n, nil
}

func cmdBookingSetStatus(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 2, "id and status"); err != nil {
		return err
	}
	id, err := atoi64(args[0], "id")
	if err != nil {
		return err
	}
	st, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("status must be a number")
	}
	msg, err := app.NewReception(a.api).SetRoomBookingStatus(ctx, id, st)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdBookingAdd(ctx context.Context, a *admin, args []string) error {
	fs := flags("booking-add")
	rooms := fs.String("rooms", "", "comma separated room ids")
	var c domain.ClientInfo
	var m domain.ManualBooking
	fs.StringVar(&m.CheckIn, "in", "", "check-in date YYYY-MM-DD")
	fs.StringVar(&m.CheckOut, "out", "", "check-out date YYYY-MM-DD")
	fs.StringVar(&m.Color, "color", "", "grid colour")
	fs.StringVar(&m.Description, "note", "", "description")
	fs.BoolVar(&m.ToCook, "cook", false, "kitchen should cook")
	fs.StringVar(&c.FullName, "name", "", "guest full name")
	fs.StringVar(&c.Phone, "phone", "", "guest phone")
	fs.StringVar(&c.PassportNumber, "passport", "", "guest passport")
	fs.StringVar(&c.Email, "email", "", "guest email")
	fs.BoolVar(&c.Breakfast, "breakfast", false, "with breakfast")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	ids, err := parseIDs(*rooms)
	if err != nil {
		return err
	}
	m.RoomIDs = ids
	conf, err := app.NewReception(a.api).CreateManualBooking(ctx, c, m)
	if err != nil {
		if conf.Booked > 0 {
			fmt.Fprintf(a.out, "booked %d of %d rooms for client %d\n", conf.Booked, len(conf.Rooms), conf.ClientID)
		}
		return err
	}
	fmt.Fprintf(a.out, "booked %d rooms for client %d\n", conf.Booked, conf.ClientID)
	return nil
}

func cmdRooms(ctx context.Context, a *admin, _ []string) error {
	rooms, err := app.NewReception(a.api).Rooms(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tTYPE")
	for _, r := range rooms {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.RoomName, r.RoomType.Name)
	}
	return tw.Flush()
}

func cmdClients(ctx context.Context, a *admin, _ []string) error {
	list, err := app.NewReception(a.api).Clients(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tPASSPORT")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.FullName, c.Phone, c.PassportNumber)
	}
	return tw.Flush()
}

func cmdInquiries(ctx context.Context, a *admin, args []string) error {
	fs := flags("inquiries")
	page := fs.Int("page", 0, "page")
	out := fs.String("xlsx", "", "export every inquiry to this file")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	r := app.NewReception(a.api)
	if *out != "" {
		n, err := export(*out, func(w io.Writer) (int, error) { return r.ExportInquiries(ctx, w) })
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d tour requests written to %s\n", n, *out)
		return nil
	}
	list, err := r.Inquiries(ctx, *page)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tTOUR\tSTATUS")
	for _, q := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", q.ID, q.Name, q.Phone, q.Email, q.TravelTourID, domain.InquiryStatusName(q.Status))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printPager(list.Pager, list.TotalElements)
	return nil
}

func cmdInquirySetStatus(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 2, "id and status"); err != nil {
		return err
	}
	st, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("status must be a number")
	}
	q, err := app.NewReception(a.api).SetInquiryStatus(ctx, args[0], st)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tour request %s: %s\n", q.ID, domain.InquiryStatusName(q.Status))
	return nil
}

func cmdInquiryDel(ctx context.Context, a *admin, args []string) error {
	fs := flags("inquiry-del")
	yes := fs.Bool("yes", false, "skip confirmation")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 1, "id"); err != nil {
		return err
	}
	if !*yes && !a.confirm("Delete tour request "+pos[0]+"?") {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	if err := app.NewReception(a.api).DeleteInquiry(ctx, pos[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted", pos[0])
	return nil
}

func cmdUsers(ctx context.Context, a *admin, _ []string) error {
	list, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tROLES")
	for _, u := range list {
		roles := make([]string, 0, len(u.Roles))
		for _, r := range u.Roles {
			roles = append(roles, r.Name)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Phone, strings.Join(roles, ","))
	}
	return tw.Flush()
}

func cmdRoles(ctx context.Context, a *admin, _ []string) error {
	roles, err := a.users.Roles(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		fmt.Fprintln(a.out, r.Name)
	}
	return nil
}

func cmdUserAdd(ctx context.Context, a *admin, args []string) error {
	fs := flags("user-add")
	var n app.NewUser
	fs.StringVar(&n.Name, "name", "", "name")
	fs.StringVar(&n.Phone, "phone", "", "phone")
	fs.StringVar(&n.Password, "password", "", "password")
	fs.StringVar(&n.Role, "role", "", "role")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	u, err := a.users.Create(ctx, n)
	if err != nil {
		if u.ID != 0 {
			return fmt.Errorf("user %d created without a role: %w", u.ID, err)
		}
		return err
	}
	fmt.Fprintf(a.out, "user %d created as %s\n", u.ID, n.Role)
	return nil
}

func cmdUserEdit(ctx context.Context, a *admin, args []string) error {
	fs := flags("user-edit")
	name := fs.String("name", "", "name")
	phone := fs.String("phone", "", "phone")
	password := fs.String("password", "", "new password, empty keeps the current one")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 1, "id"); err != nil {
		return err
	}
	id, err := atoi64(pos[0], "id")
	if err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*phone) == "" {
		return &domain.ValidationError{Field: "name", Message: "name and phone are required"}
	}
	if err := a.users.Update(ctx, id, *name, *phone, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "user", id, "updated")
	return nil
}

func cmdUserDel(ctx context.Context, a *admin, args []string) error {
	fs := flags("user-del")
	yes := fs.Bool("yes", false, "skip confirmation")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := need(pos, 1, "id"); err != nil {
		return err
	}
	id, err := atoi64(pos[0], "id")
	if err != nil {
		return err
	}
	if !*yes && !a.confirm(fmt.Sprintf("Delete user %d?", id)) {
		fmt.Fprintln(a.out, "cancelled")
		return nil
	}
	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "deleted user", id)
	return nil
}

// messenger opens the chat service; withTransport dials the broker too.
func (a *admin) messenger(ctx context.Context, withTransport bool) (*app.Messenger, func(), error) {
	if !withTransport {
		return app.NewMessenger(a.api, a.users, nil, a.cfg.ChatFanout), func() {}, nil
	}
	t, closeFn, err := a.dialChat(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("chat transport: %w", err)
	}
	return app.NewMessenger(a.api, a.users, t, a.cfg.ChatFanout), closeFn, nil
}

// me is the staff account behind the stored session.
func (a *admin) me(ctx context.Context) (domain.User, error) {
	sess, err := a.session.Current(ctx)
	if err != nil {
		return domain.User{}, err
	}
	return a.users.ByPhone(ctx, sess.Phone)
}

func cmdChats(ctx context.Context, a *admin, _ []string) error {
	m, _, _ := a.messenger(ctx, false)
	chats, err := m.ListChats(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAST MESSAGE")
	for _, c := range chats {
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Message
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, last)
	}
	return tw.Flush()
}

func parseIDs(s string) ([]int64, error) {
	var out []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := atoi64(p, "id")
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func cmdChatNew(ctx context.Context, a *admin, args []string) error {
	fs := flags("chat-new")
	name := fs.String("name", "", "chat name")
	members := fs.String("members", "", "comma separated user ids")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	ids, err := parseIDs(*members)
	if err != nil {
		return err
	}
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	m, _, _ := a.messenger(ctx, false)
	chat, err := m.CreateChat(ctx, *name, me.ID, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "chat %d created\n", chat.ID)
	return nil
}

func cmdChatMessages(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 1, "chat id"); err != nil {
		return err
	}
	id, err := atoi64(args[0], "chat id")
	if err != nil {
		return err
	}
	m, _, _ := a.messenger(ctx, false)
	msgs, err := m.Messages(ctx, id)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		a.printMessage(msg)
	}
	return nil
}

func (a *admin) printMessage(msg domain.ChatMessage) {
	fmt.Fprintf(a.out, "[%s] #%d user %d: %s\n", msg.CreatedAt, msg.ID, msg.UserID, msg.Message)
}

func cmdChatSend(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 2, "chat id and text"); err != nil {
		return err
	}
	id, err := atoi64(args[0], "chat id")
	if err != nil {
		return err
	}
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	m, closeFn, err := a.messenger(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()
	if _, err := m.Send(ctx, id, me.ID, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "sent")
	return nil
}

func cmdChatEdit(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 3, "chat id, message id and text"); err != nil {
		return err
	}
	chatID, err := atoi64(args[0], "chat id")
	if err != nil {
		return err
	}
	msgID, err := atoi64(args[1], "message id")
	if err != nil {
		return err
	}
	me, err := a.me(ctx)
	if err != nil {
		return err
	}
	m, closeFn, err := a.messenger(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()
	if err := m.Edit(ctx, chatID, msgID, me.ID, strings.Join(args[2:], " ")); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "edited")
	return nil
}

func cmdChatWatch(ctx context.Context, a *admin, args []string) error {
	if err := need(args, 1, "chat id"); err != nil {
		return err
	}
	id, err := atoi64(args[0], "chat id")
	if err != nil {
		return err
	}
	m, closeFn, err := a.messenger(ctx, true)
	if err != nil {
		return err
	}
	defer closeFn()
	fmt.Fprintf(a.out, "watching chat %d, ctrl-c to stop\n", id)
	return m.Watch(ctx, id, a.printMessage)
}

func cmdSubmissions(ctx context.Context, a *admin, args []string) error {
	fs := flags("submissions")
	limit := fs.Int("limit", 20, "rows")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	j, closeFn, err := a.journal(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	rows, err := j.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tVISITOR\tCLIENT\tROOMS\tOUTCOME\tDETAIL")
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d\t%s\t%s\n", s.CreatedAt.Format("2006-01-02 15:04"), s.VisitorID,
			s.ClientID, s.RoomsBooked, s.RoomsRequested, s.Outcome, s.Detail)
	}
	return tw.Flush()
}

func cmdCacheFlush(ctx context.Context, a *admin, args []string) error {
	if a.catalog == nil {
		return errors.New("no cache configured")
	}
	sections := app.Sections
	if len(args) > 0 {
		sections = args
	}
	for _, s := range sections {
		if err := a.catalog.Invalidate(ctx, s); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, "flushed", strings.Join(sections, ", "))
	return nil
}

func cmdStats(ctx context.Context, a *admin, args []string) error {
	fs := flags("stats")
	asJSON := fs.Bool("json", false, "print the raw parts")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	d, err := app.NewStatistics(a.api).Dashboard(ctx)
	if err != nil {
		return err
	}
	if d.Empty() {
		return errors.New("no statistics available")
	}
	if *asJSON {
		return a.printJSON(d)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tCOUNT\tVALUE")
	for _, part := range []struct {
		name string
		m    map[string]map[string]json.Number
	}{{"", d.Overview}, {"active ", d.ActiveStatus}, {"timeline ", d.Timeline}} {
		for _, section := range slices.Sorted(maps.Keys(part.m)) {
			for _, k := range slices.Sorted(maps.Keys(part.m[section])) {
				fmt.Fprintf(tw, "%s%s\t%s\t%s\n", part.name, section, k, part.m[section][k])
			}
		}
	}
	for _, k := range slices.Sorted(maps.Keys(d.Summary)) {
		fmt.Fprintf(tw, "summary\t%s\t%s\n", k, d.Summary[k])
	}
	return tw.Flush()
}
