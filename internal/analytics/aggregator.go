// Package analytics derives time-bucketed sales, category, product and
// customer statistics from an order snapshot. Everything here is a pure
// function of its inputs; nothing is cached or mutated.
package analytics

import (
	"sort"
	"time"

	"github.com/vkusdostavka/orderdesk/internal/catalog"
	"github.com/vkusdostavka/orderdesk/internal/domain"
)

const dayFormat = "2006-01-02"

// DailySales is one calendar day of the sales series. Revenue counts
// subtotals only, delivery fees excluded.
type DailySales struct {
	Date      string `json:"date"`
	Orders    int    `json:"orders"`
	Revenue   int64  `json:"revenue"`
	Customers int    `json:"customers"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Orders   int    `json:"orders"`
	Revenue  int64  `json:"revenue"`
	Items    int    `json:"items"`
}

type ProductStat struct {
	Name     string `json:"name"`
	Orders   int    `json:"orders"`
	Revenue  int64  `json:"revenue"`
	Quantity int    `json:"quantity"`
}

type TopCustomer struct {
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Orders     int       `json:"orders"`
	TotalSpent int64     `json:"totalSpent"`
	FirstOrder time.Time `json:"firstOrder"`
	LastOrder  time.Time `json:"lastOrder"`
}

type CustomerStats struct {
	Total         int           `json:"total"`
	New           int           `json:"newCustomers"`
	Returning     int           `json:"returningCustomers"`
	AverageOrders float64       `json:"averageOrders"`
	Top           []TopCustomer `json:"topCustomers"`
}

type StatusCount struct {
	Status domain.OrderStatus `json:"status"`
	Label  string             `json:"label"`
	Count  int                `json:"count"`
}

type Report struct {
	Sales         []DailySales   `json:"sales"`
	Categories    []CategoryStat `json:"categories"`
	TopProducts   []ProductStat  `json:"topProducts"`
	Customers     CustomerStats  `json:"customers"`
	OrderStatuses []StatusCount  `json:"orders"`
	Period        Period         `json:"period"`
	TotalOrders   int            `json:"totalOrders"`
	TotalRevenue  int64          `json:"totalRevenue"`
}

const topLimit = 10

// Generate computes the full report for the window ending on now's
// calendar day. Window membership is decided once, by calendar date in
// now's location, and every sub-view is computed over that same order
// set, so the views are mutually consistent.
func Generate(orders []domain.Order, period Period, registry catalog.Registry, now time.Time) *Report {
	days := period.Days()
	loc := now.Location()

	dayIndex := make(map[string]int, days)
	sales := make([]DailySales, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-days+1)
		key := day.In(loc).Format(dayFormat)
		dayIndex[key] = i
		sales[i] = DailySales{Date: key}
	}

	var inWindow []domain.Order
	for _, order := range orders {
		if _, ok := dayIndex[order.CreatedAt.In(loc).Format(dayFormat)]; ok {
			inWindow = append(inWindow, order)
		}
	}

	report := &Report{
		Sales:       sales,
		Period:      period,
		TotalOrders: len(inWindow),
	}
	for _, order := range inWindow {
		report.TotalRevenue += order.Subtotal
	}

	fillDailySales(report.Sales, dayIndex, inWindow, loc)
	report.Categories = categoryStats(inWindow, registry)
	report.TopProducts = topProducts(inWindow)
	report.Customers = customerStats(inWindow)
	report.OrderStatuses = statusHistogram(inWindow)

	return report
}

func fillDailySales(sales []DailySales, dayIndex map[string]int, orders []domain.Order, loc *time.Location) {
	phonesByDay := make(map[int]map[string]struct{})
	for _, order := range orders {
		i := dayIndex[order.CreatedAt.In(loc).Format(dayFormat)]
		sales[i].Orders++
		sales[i].Revenue += order.Subtotal
		phones, ok := phonesByDay[i]
		if !ok {
			phones = make(map[string]struct{})
			phonesByDay[i] = phones
		}
		phones[order.CustomerPhone] = struct{}{}
	}
	for i, phones := range phonesByDay {
		sales[i].Customers = len(phones)
	}
}

// categoryStats seeds one accumulator per known category, so categories
// with zero orders still appear. Lines whose product has no catalog
// match are skipped.
func categoryStats(orders []domain.Order, registry catalog.Registry) []CategoryStat {
	categories := registry.Categories()
	stats := make([]CategoryStat, len(categories))
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		stats[i] = CategoryStat{Category: c.ID, Name: c.Name}
		index[c.ID] = i
	}

	for _, order := range orders {
		for _, line := range order.Items {
			c, ok := registry.LookupCategory(line.Name)
			if !ok {
				continue
			}
			i := index[c.ID]
			stats[i].Orders++
			stats[i].Revenue += line.Total()
			stats[i].Items += line.Quantity
		}
	}
	return stats
}

// topProducts groups lines by product name, ranked by line-occurrence
// count descending with product name ascending as the tie-break.
func topProducts(orders []domain.Order) []ProductStat {
	byName := make(map[string]*ProductStat)
	for _, order := range orders {
		for _, line := range order.Items {
			p, ok := byName[line.Name]
			if !ok {
				p = &ProductStat{Name: line.Name}
				byName[line.Name] = p
			}
			p.Orders++
			p.Revenue += line.Total()
			p.Quantity += line.Quantity
		}
	}

	products := make([]ProductStat, 0, len(byName))
	for _, p := range byName {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Orders != products[j].Orders {
			return products[i].Orders > products[j].Orders
		}
		return products[i].Name < products[j].Name
	})

	if len(products) > topLimit {
		products = products[:topLimit]
	}
	return products
}

func customerStats(orders []domain.Order) CustomerStats {
	byPhone := make(map[string]*TopCustomer)
	for _, order := range orders {
		c, ok := byPhone[order.CustomerPhone]
		if !ok {
			c = &TopCustomer{
				Name:       order.CustomerName,
				Phone:      order.CustomerPhone,
				FirstOrder: order.CreatedAt,
				LastOrder:  order.CreatedAt,
			}
			byPhone[order.CustomerPhone] = c
		}
		c.Orders++
		c.TotalSpent += order.Subtotal
		if order.CreatedAt.Before(c.FirstOrder) {
			c.FirstOrder = order.CreatedAt
		}
		if order.CreatedAt.After(c.LastOrder) {
			c.LastOrder = order.CreatedAt
		}
	}

	customers := make([]TopCustomer, 0, len(byPhone))
	stats := CustomerStats{Top: []TopCustomer{}}
	var totalOrders int
	for _, c := range byPhone {
		customers = append(customers, *c)
		totalOrders += c.Orders
		if c.Orders == 1 {
			stats.New++
		} else {
			stats.Returning++
		}
	}
	stats.Total = len(customers)
	if stats.Total > 0 {
		stats.AverageOrders = float64(totalOrders) / float64(stats.Total)
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].TotalSpent != customers[j].TotalSpent {
			return customers[i].TotalSpent > customers[j].TotalSpent
		}
		return customers[i].Phone < customers[j].Phone
	})
	if len(customers) > topLimit {
		customers = customers[:topLimit]
	}
	stats.Top = customers

	return stats
}

// statusHistogram counts only statuses actually present, in lifecycle
// order.
func statusHistogram(orders []domain.Order) []StatusCount {
	counts := make(map[domain.OrderStatus]int)
	for _, order := range orders {
		counts[order.Status]++
	}

	histogram := make([]StatusCount, 0, len(counts))
	for _, status := range domain.OrderStatuses {
		if n, ok := counts[status]; ok {
			histogram = append(histogram, StatusCount{
				Status: status,
				Label:  domain.StatusLabel(status),
				Count:  n,
			})
		}
	}
	return histogram
}
