package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v82"

	"cloudlodge/internal/api"
	"cloudlodge/internal/entities"
	"cloudlodge/internal/service"
	"cloudlodge/internal/session"
	"cloudlodge/internal/utils"
)

func main() {
	godotenv.Load()
	logger := utils.NewLogger()

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		logger.Fatal("API_BASE_URL not set")
	}

	tokenPath := os.Getenv("TOKEN_FILE")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Fatalf("Cannot resolve home dir for token file: %v", err)
		}
		tokenPath = filepath.Join(home, ".cloudlodge", "token")
	}

	sess := session.New(tokenPath)
	sess.OnInvalidate(func() {
		logger.Warn("Session is no longer valid, please sign in again")
	})

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	callbackAddr := os.Getenv("CALLBACK_ADDR")
	if callbackAddr == "" {
		callbackAddr = "localhost:4242"
	}

	client := api.NewClient(baseURL, sess, logger)
	authSvc := service.NewAuthService(client, sess, logger)
	paymentSvc := service.NewPaymentService("http://"+callbackAddr, logger)
	bookingSvc := service.NewBookingService(client, paymentSvc, logger)
	adminSvc := service.NewAdminService(client, logger)
	watchSvc := service.NewWatchService(adminSvc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)
		err = authSvc.Login(ctx, *email, *password)

	case "logout":
		err = authSvc.Logout()

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		name := fs.String("name", "", "display name")
		fs.Parse(args)
		_, err = authSvc.Register(ctx, *email, *password, *name)

	case "room-types":
		var types []entities.RoomType
		types, err = client.ListRoomTypes(ctx)
		for _, rt := range types {
			fmt.Printf("%s\t%s\tmax %d guests\t%.2f/night\n",
				rt.ID, rt.Name, rt.MaxGuests, float64(rt.PriceCentsNight)/100)
		}

	case "rooms":
		var rooms []entities.Room
		rooms, err = client.ListRooms(ctx)
		for _, room := range rooms {
			fmt.Printf("%s\t%s\ttype %s\n", room.ID, room.Name, room.RoomTypeID)
		}

	case "reservations":
		var reservations []entities.Reservation
		reservations, err = client.ListReservations(ctx)
		for _, res := range reservations {
			fmt.Printf("%s\troom %s\t%s -> %s\t%d guests\t%s\n",
				res.ID, res.RoomUnitID, res.CheckInDate, res.CheckOutDate, res.NumGuests, res.Status)
		}

	case "reserve":
		fs := flag.NewFlagSet("reserve", flag.ExitOnError)
		room := fs.String("room", "", "room id")
		checkIn := fs.String("check-in", "", "check-in day (YYYY-MM-DD)")
		checkOut := fs.String("check-out", "", "check-out day (YYYY-MM-DD)")
		guests := fs.Int("guests", 1, "number of guests")
		fs.Parse(args)

		form := service.ModificationForm{CheckInDate: *checkIn, CheckOutDate: *checkOut, NumGuests: *guests}
		var stay entities.DateRange
		stay, err = form.Parse()
		if err == nil {
			var res *entities.Reservation
			res, err = bookingSvc.BookRoom(ctx, *room, stay, *guests)
			if err == nil {
				fmt.Printf("reservation %s confirmed: %s -> %s\n", res.ID, res.CheckInDate, res.CheckOutDate)
			}
		}

	case "modify":
		fs := flag.NewFlagSet("modify", flag.ExitOnError)
		reservationID := fs.String("reservation", "", "reservation id")
		checkIn := fs.String("check-in", "", "new check-in day (YYYY-MM-DD)")
		checkOut := fs.String("check-out", "", "new check-out day (YYYY-MM-DD)")
		guests := fs.Int("guests", 1, "new number of guests")
		fs.Parse(args)

		form := service.ModificationForm{CheckInDate: *checkIn, CheckOutDate: *checkOut, NumGuests: *guests}
		var newRange entities.DateRange
		newRange, err = form.Parse()
		if err == nil {
			var res *entities.Reservation
			res, err = client.GetReservation(ctx, *reservationID)
			if err == nil {
				var updated *entities.Reservation
				updated, err = bookingSvc.ModifyReservation(ctx, *res, newRange, *guests)
				if err == nil {
					fmt.Printf("reservation %s now %s -> %s, %d guests (%s)\n",
						updated.ID, updated.CheckInDate, updated.CheckOutDate, updated.NumGuests, updated.Status)
				}
			}
		}

	case "cancel":
		fs := flag.NewFlagSet("cancel", flag.ExitOnError)
		reservationID := fs.String("reservation", "", "reservation id")
		checkoutSession := fs.String("checkout-session", "", "checkout session to refund (optional)")
		fs.Parse(args)

		var res *entities.Reservation
		res, err = client.GetReservation(ctx, *reservationID)
		if err == nil {
			if *checkoutSession != "" {
				res.CheckoutSessionID = *checkoutSession
			}
			err = bookingSvc.CancelReservation(ctx, *res)
		}

	case "pay":
		fs := flag.NewFlagSet("pay", flag.ExitOnError)
		reservationID := fs.String("reservation", "", "reservation id")
		amount := fs.Int64("amount", 0, "total amount in cents")
		currency := fs.String("currency", "eur", "currency code")
		email := fs.String("email", "", "receipt email")
		desk := fs.Bool("desk", false, "pay the balance at the desk (deposit only)")
		fs.Parse(args)

		charge := paymentSvc.CheckoutAmount(*amount, *desk)
		var payURL, sessionID string
		payURL, sessionID, err = paymentSvc.CreateCheckoutSession(charge, *currency, *reservationID, *email)
		if err == nil {
			fmt.Printf("open %s to pay (session %s), waiting for the redirect...\n", payURL, sessionID)
			var result *service.CallbackResult
			result, err = paymentSvc.WaitForCallback(ctx, callbackAddr)
			if err == nil {
				if result.Completed {
					fmt.Println("payment completed")
				} else {
					fmt.Println("payment cancelled")
				}
			}
		}

	case "dashboard":
		var metrics *entities.DashboardMetrics
		metrics, err = adminSvc.Metrics(ctx)
		if err == nil {
			fmt.Printf("occupancy: %d/%d rooms (%.1f%%)\n",
				metrics.OccupiedRooms, metrics.TotalRooms, metrics.OccupancyRate*100)
			fmt.Printf("active reservations: %d\n", metrics.ActiveReservations)
			fmt.Printf("income this month: %.2f\n", float64(metrics.IncomeCentsMonth)/100)
		}

	case "watch":
		fs := flag.NewFlagSet("watch", flag.ExitOnError)
		schedule := fs.String("schedule", "@every 1m", "cron schedule for dashboard refresh")
		fs.Parse(args)
		err = watchSvc.Run(ctx, *schedule)

	case "users":
		var users []entities.User
		users, err = adminSvc.ListUsers(ctx)
		for _, user := range users {
			fmt.Printf("%s\t%s\t%s\n", user.ID, user.Email, user.Role)
		}

	case "user-role":
		fs := flag.NewFlagSet("user-role", flag.ExitOnError)
		userID := fs.String("user", "", "user id")
		role := fs.String("role", entities.RoleGuest, "GUEST or ADMIN")
		fs.Parse(args)
		_, err = adminSvc.SetUserRole(ctx, *userID, *role)

	case "user-delete":
		fs := flag.NewFlagSet("user-delete", flag.ExitOnError)
		userID := fs.String("user", "", "user id")
		fs.Parse(args)
		err = adminSvc.RemoveUser(ctx, *userID)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cloudlodge <command> [flags]

commands:
  login, logout, register
  room-types, rooms, reservations
  reserve, modify, cancel, pay
  dashboard, watch
  users, user-role, user-delete`)
}
