// Command trackctl prints the production progress of an order, the same view
// clients get from the public tracking endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/FaizGusion00/fazztrack-backend/config"
	"github.com/FaizGusion00/fazztrack-backend/logger"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

func main() {
	var (
		code    = flag.String("code", "", "public tracking code of the order")
		orderID = flag.Uint("id", 0, "order id, used when -code is empty")
		timeout = flag.Duration("timeout", 10*time.Second, "lookup timeout")
	)
	flag.Parse()

	if *code == "" && *orderID == 0 {
		fmt.Fprintln(os.Stderr, "usage: trackctl -code TRACKINGCODE | -id ORDERID")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	logger.Set(log)

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// tracking is public, so the gate and file store are never consulted
	orders := services.NewRegistry(services.Deps{DB: config.GetDB(), Gate: services.AllowAll{}}).Orders

	var view *services.TrackingView
	if *code != "" {
		view, err = orders.TrackByCode(ctx, *code)
	} else {
		view, err = orders.TrackByID(ctx, *orderID)
	}
	if err != nil {
		if services.IsKind(err, services.KindNotFound) {
			fmt.Fprintln(os.Stderr, "order not found")
			os.Exit(1)
		}
		log.Fatal("Tracking lookup failed", zap.Error(err))
	}

	if err := render(os.Stdout, view); err != nil {
		log.Fatal("Failed to print tracking view", zap.Error(err))
	}
}

// render writes the order summary followed by one table row per phase
func render(w io.Writer, view *services.TrackingView) error {
	fmt.Fprintf(w, "Order %d  %s  (%s)\n", view.OrderID, view.JobName, view.TrackingID)
	fmt.Fprintf(w, "Status: %s  Progress: %d%%  Estimated delivery: %s\n", view.Status, view.ProgressPercentage, view.EstimatedDelivery)
	if view.DeliveryTrackingID != nil {
		fmt.Fprintf(w, "Courier reference: %s\n", *view.DeliveryTrackingID)
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Phase", "Status", "Started", "Finished")
	for i, phase := range view.Phases {
		row := []string{strconv.Itoa(i + 1), phase.PhaseName, phase.Status, stamp(phase.StartTime), stamp(phase.EndTime)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
