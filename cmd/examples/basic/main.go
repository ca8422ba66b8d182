package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/erain9/tickbook/pkg/core"
	"github.com/fatih/color"
)

func main() {
	book := core.NewOrderBook(core.Config{})
	defer book.Close()
	ctx := context.Background()

	// Rest a small ladder of sells.
	for i, price := range []core.Price{101, 102, 103} {
		order, err := core.NewOrder(core.GoodTilCancel, core.OrderID(i+1), core.Sell, price, 10)
		if err != nil {
			panic(err)
		}
		book.AddOrder(ctx, order)
	}

	color.Cyan("Resting book:")
	printSnapshot(book.GetOrderInfos())

	// A crossing buy sweeps the two best asks.
	buy, err := core.NewOrder(core.GoodTilCancel, 10, core.Buy, 102, 15)
	if err != nil {
		panic(err)
	}
	trades := book.AddOrder(ctx, buy)

	color.Cyan("\nTrades from buy 15 @ 102:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BID ID\tASK ID\tBID PX\tASK PX\tQTY")
	for _, t := range trades {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n",
			t.Bid.OrderID, t.Ask.OrderID, t.Bid.Price, t.Ask.Price, t.Bid.Quantity)
	}
	w.Flush()

	color.Cyan("\nBook after the cross:")
	printSnapshot(book.GetOrderInfos())
	fmt.Printf("\nResting orders: %d\n", book.Size())
}

func printSnapshot(snapshot core.BookSnapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIDE\tPRICE\tQTY")
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	for _, lvl := range snapshot.Asks {
		fmt.Fprintf(w, "%s\t%d\t%d\n", red("ASK"), lvl.Price, lvl.Quantity)
	}
	for _, lvl := range snapshot.Bids {
		fmt.Fprintf(w, "%s\t%d\t%d\n", green("BID"), lvl.Price, lvl.Quantity)
	}
	w.Flush()
}
