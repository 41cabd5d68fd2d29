package console

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"bookingcore/internal/core"
	"bookingcore/pkg/domain"
)

type access int

const (
	accessPublic access = iota
	accessAuth
	accessAdmin
)

type command struct {
	name   string
	usage  string
	access access
	denied string // message when an unauthenticated caller is rejected
	run    func(ctx context.Context, args []string) (any, error)
}

type usageError struct {
	usage string
	err   error
}

func (e *usageError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%v (usage: %s)", e.err, e.usage)
	}
	return "usage: " + e.usage
}

// slotView is a slot with its remaining capacity.
type slotView struct {
	domain.Slot
	Available int `json:"available"`
}

// accountView is the registered profile shown by whoami.
type accountView struct {
	domain.UserAccount
	Name string `json:"name"`
}

type serviceDetail struct {
	Service domain.Service `json:"service"`
	Slots   []slotView     `json:"slots"`
}

type capacityView struct {
	SlotID      string `json:"slotId"`
	Capacity    int    `json:"capacity"`
	Available   int    `json:"available"`
	IsAvailable bool   `json:"isAvailable"`
}

type helpEntry struct {
	Command string `json:"command"`
	Usage   string `json:"usage"`
	Access  string `json:"access"`
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse accepts an optional leading positional argument before the flags
// and returns it, falling back to the first argument after the flags.
func parse(fs *flag.FlagSet, usage string, args []string) (string, error) {
	var positional string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		positional, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", &usageError{usage: usage, err: err}
	}
	if positional == "" && fs.NArg() > 0 {
		positional = fs.Arg(0)
	}
	return positional, nil
}

func requireArg(value, usage string) error {
	if strings.TrimSpace(value) == "" {
		return &usageError{usage: usage}
	}
	return nil
}

// visited reports which flags were set explicitly.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (s *Shell) currentEmail(ctx context.Context) (string, error) {
	user, _, err := s.core.Auth.CurrentUser(ctx)
	return user.Email, err
}

func (s *Shell) slotViews(ctx context.Context, slots []domain.Slot) ([]slotView, error) {
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		available, err := s.core.Slots.AvailableCapacity(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, slotView{Slot: slot, Available: available})
	}
	return views, nil
}

func (s *Shell) commandTable() []*command {
	return []*command{
		{name: "register", usage: "register -email EMAIL -first NAME -last NAME [-phone PHONE]", run: s.register},
		{name: "login", usage: "login EMAIL", run: s.login},
		{name: "logout", usage: "logout", run: s.logout},
		{name: "whoami", usage: "whoami", access: accessAuth, run: s.whoami},
		{name: "services", usage: "services", run: s.services},
		{name: "service", usage: "service ID", run: s.service},
		{name: "search", usage: "search QUERY", run: s.search},
		{name: "service-create", usage: "service-create -name NAME [-description TEXT] [-duration MINUTES]", access: accessAdmin, run: s.serviceCreate},
		{name: "service-update", usage: "service-update ID [-name NAME] [-description TEXT] [-duration MINUTES]", access: accessAdmin, run: s.serviceUpdate},
		{name: "service-delete", usage: "service-delete ID", access: accessAdmin, run: s.serviceDelete},
		{name: "slots", usage: "slots [-service ID] [-all]", run: s.slots},
		{name: "slot-create", usage: "slot-create -service ID -datetime DATETIME -capacity N", access: accessAdmin, run: s.slotCreate},
		{name: "slot-update", usage: "slot-update ID [-service ID] [-datetime DATETIME] [-capacity N]", access: accessAdmin, run: s.slotUpdate},
		{name: "slot-delete", usage: "slot-delete ID", access: accessAdmin, run: s.slotDelete},
		{name: "capacity", usage: "capacity SLOT_ID", run: s.capacity},
		{name: "book", usage: "book SLOT_ID", access: accessAuth, denied: "You must be logged in to book a slot", run: s.book},
		{name: "cancel", usage: "cancel RESERVATION_ID", access: accessAuth, denied: "You must be logged in to cancel a reservation", run: s.cancel},
		{name: "reservations", usage: "reservations", access: accessAuth, run: s.reservations},
		{name: "upcoming", usage: "upcoming", access: accessAuth, run: s.upcoming},
		{name: "help", usage: "help", run: s.help},
	}
}

func (s *Shell) register(ctx context.Context, args []string) (any, error) {
	const usage = "register -email EMAIL -first NAME -last NAME [-phone PHONE]"
	fs := newFlagSet("register")
	var in core.RegisterInput
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.Phone, "phone", "", "phone number")
	if _, err := parse(fs, usage, args); err != nil {
		return nil, err
	}
	return s.core.Auth.Register(ctx, in)
}

func (s *Shell) login(ctx context.Context, args []string) (any, error) {
	const usage = "login EMAIL"
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	positional, err := parse(fs, usage, args)
	if err != nil {
		return nil, err
	}
	if *email == "" {
		*email = positional
	}
	if err := requireArg(*email, usage); err != nil {
		return nil, err
	}
	return s.core.Auth.Login(ctx, *email)
}

func (s *Shell) logout(ctx context.Context, _ []string) (any, error) {
	return nil, s.core.Auth.Logout(ctx)
}

func (s *Shell) whoami(ctx context.Context, _ []string) (any, error) {
	user, _, err := s.core.Auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	account, found, err := s.core.Auth.Account(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if !found {
		return user, nil
	}
	return accountView{UserAccount: account, Name: account.FullName()}, nil
}

func (s *Shell) services(ctx context.Context, _ []string) (any, error) {
	return s.core.Catalog.All(ctx)
}

func (s *Shell) service(ctx context.Context, args []string) (any, error) {
	const usage = "service ID"
	if len(args) != 1 {
		return nil, &usageError{usage: usage}
	}
	svc, found, err := s.core.Catalog.Get(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NotFound(domain.EntityService, args[0], "Service not found")
	}
	slots, err := s.core.Slots.FutureByService(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.slotViews(ctx, slots)
	if err != nil {
		return nil, err
	}
	return serviceDetail{Service: svc, Slots: views}, nil
}

func (s *Shell) search(ctx context.Context, args []string) (any, error) {
	return s.core.Catalog.Search(ctx, strings.Join(args, " "))
}

func (s *Shell) serviceCreate(ctx context.Context, args []string) (any, error) {
	const usage = "service-create -name NAME [-description TEXT] [-duration MINUTES]"
	fs := newFlagSet("service-create")
	name := fs.String("name", "", "service name")
	description := fs.String("description", "", "description")
	duration := fs.Int("duration", 0, "duration in minutes")
	if _, err := parse(fs, usage, args); err != nil {
		return nil, err
	}
	set := visited(fs)
	in := core.ServiceInput{Name: *name}
	if set["description"] {
		in.Description = description
	}
	if set["duration"] {
		in.Duration = duration
	}
	return s.core.Catalog.Create(ctx, in)
}

func (s *Shell) serviceUpdate(ctx context.Context, args []string) (any, error) {
	const usage = "service-update ID [-name NAME] [-description TEXT] [-duration MINUTES]"
	fs := newFlagSet("service-update")
	name := fs.String("name", "", "service name")
	description := fs.String("description", "", "description")
	duration := fs.Int("duration", 0, "duration in minutes")
	id, err := parse(fs, usage, args)
	if err != nil {
		return nil, err
	}
	if err := requireArg(id, usage); err != nil {
		return nil, err
	}
	set := visited(fs)
	var in core.ServiceUpdate
	if set["name"] {
		in.Name = name
	}
	if set["description"] {
		in.Description = description
	}
	if set["duration"] {
		in.Duration = duration
	}
	return s.core.Catalog.Update(ctx, id, in)
}

func (s *Shell) serviceDelete(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, &usageError{usage: "service-delete ID"}
	}
	return nil, s.core.Catalog.Delete(ctx, args[0])
}

func (s *Shell) slots(ctx context.Context, args []string) (any, error) {
	const usage = "slots [-service ID] [-all]"
	fs := newFlagSet("slots")
	serviceID := fs.String("service", "", "service id")
	all := fs.Bool("all", false, "include past slots")
	if _, err := parse(fs, usage, args); err != nil {
		return nil, err
	}
	var (
		slots []domain.Slot
		err   error
	)
	switch {
	case *serviceID != "" && *all:
		slots, err = s.core.Slots.ByService(ctx, *serviceID)
	case *serviceID != "":
		slots, err = s.core.Slots.FutureByService(ctx, *serviceID)
	case *all:
		return nil, &usageError{usage: usage, err: fmt.Errorf("-all requires -service")}
	default:
		slots, err = s.core.Slots.AllFuture(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.slotViews(ctx, slots)
}

func (s *Shell) slotCreate(ctx context.Context, args []string) (any, error) {
	const usage = "slot-create -service ID -datetime DATETIME -capacity N"
	fs := newFlagSet("slot-create")
	var in core.SlotInput
	fs.StringVar(&in.ServiceID, "service", "", "service id")
	fs.StringVar(&in.Datetime, "datetime", "", "slot start")
	fs.IntVar(&in.Capacity, "capacity", 0, "capacity")
	if _, err := parse(fs, usage, args); err != nil {
		return nil, err
	}
	return s.core.Slots.Create(ctx, in)
}

func (s *Shell) slotUpdate(ctx context.Context, args []string) (any, error) {
	const usage = "slot-update ID [-service ID] [-datetime DATETIME] [-capacity N]"
	fs := newFlagSet("slot-update")
	serviceID := fs.String("service", "", "service id")
	datetime := fs.String("datetime", "", "slot start")
	capacity := fs.Int("capacity", 0, "capacity")
	id, err := parse(fs, usage, args)
	if err != nil {
		return nil, err
	}
	if err := requireArg(id, usage); err != nil {
		return nil, err
	}
	set := visited(fs)
	var in core.SlotUpdate
	if set["service"] {
		in.ServiceID = serviceID
	}
	if set["datetime"] {
		in.Datetime = datetime
	}
	if set["capacity"] {
		in.Capacity = capacity
	}
	return s.core.Slots.Update(ctx, id, in)
}

func (s *Shell) slotDelete(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, &usageError{usage: "slot-delete ID"}
	}
	return nil, s.core.Slots.Delete(ctx, args[0])
}

func (s *Shell) capacity(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, &usageError{usage: "capacity SLOT_ID"}
	}
	slot, found, err := s.core.Slots.Get(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NotFound(domain.EntitySlot, args[0], "Slot not found")
	}
	available, err := s.core.Slots.AvailableCapacity(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	return capacityView{SlotID: slot.ID, Capacity: slot.Capacity, Available: available, IsAvailable: available > 0}, nil
}

func (s *Shell) book(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, &usageError{usage: "book SLOT_ID"}
	}
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	return s.core.Booking.Create(ctx, args[0], email)
}

func (s *Shell) cancel(ctx context.Context, args []string) (any, error) {
	if len(args) != 1 {
		return nil, &usageError{usage: "cancel RESERVATION_ID"}
	}
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	return nil, s.core.Booking.Cancel(ctx, args[0], email)
}

func (s *Shell) reservations(ctx context.Context, _ []string) (any, error) {
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	return s.core.Booking.UserReservationsWithDetails(ctx, email)
}

func (s *Shell) upcoming(ctx context.Context, _ []string) (any, error) {
	email, err := s.currentEmail(ctx)
	if err != nil {
		return nil, err
	}
	return s.core.Booking.UserFutureReservations(ctx, email)
}

func (s *Shell) help(_ context.Context, _ []string) (any, error) {
	entries := make([]helpEntry, 0, len(s.order))
	for _, name := range s.order {
		cmd := s.commands[name]
		level := "public"
		switch cmd.access {
		case accessAuth:
			level = "user"
		case accessAdmin:
			level = "admin"
		}
		entries = append(entries, helpEntry{Command: cmd.name, Usage: cmd.usage, Access: level})
	}
	return entries, nil
}
