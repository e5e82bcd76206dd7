package seeder

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Record is one synthetic re_postsales customer. Field order mirrors the
// table's column order.
type Record struct {
	CustomerID           string
	Name                 string
	Email                string
	Phone                string
	PropertyID           string
	Region               string
	PropertyType         string
	PurchaseDate         string
	MaintenanceDue       string
	PaymentStatus        string
	MaintenanceRequests  int64
	SatisfactionScore    float64
	UtilitiesConsumption float64
	ReferralSource       string
	WarrantyClaims       bool
	InsuranceStatus      string
}

func (r Record) Values() []any {
	return []any{
		r.CustomerID, r.Name, r.Email, r.Phone,
		r.PropertyID, r.Region, r.PropertyType, r.PurchaseDate,
		r.MaintenanceDue, r.PaymentStatus, r.MaintenanceRequests, r.SatisfactionScore,
		r.UtilitiesConsumption, r.ReferralSource, r.WarrantyClaims, r.InsuranceStatus,
	}
}

type Generator struct {
	rnd      *rand.Rand
	sequence int64
	now      func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

var (
	firstNames      = []string{"Aarav", "Diya", "Ishaan", "Priya", "Rohan", "Sneha", "Kabir", "Meera", "Vikram", "Anaya"}
	lastNames       = []string{"Sharma", "Patel", "Reddy", "Iyer", "Khan", "Gupta", "Nair", "Desai", "Singh", "Joshi"}
	regions         = []string{"North", "South", "East", "West", "Central"}
	propertyTypes   = []string{"Apartment", "Villa", "Row House", "Studio", "Penthouse"}
	paymentStatuses = []string{"Paid", "Pending", "Overdue"}
	referralSources = []string{"Website", "Broker", "Referral", "Walk-in", "Social Media"}
	insuranceStates = []string{"Active", "Lapsed", "Not Insured"}
)

func (g *Generator) NextRecord() Record {
	g.sequence++
	first := pickOne(g.rnd, firstNames)
	last := pickOne(g.rnd, lastNames)
	purchase := g.now().AddDate(0, 0, -g.rnd.Intn(5*365))
	due := purchase.AddDate(1, 0, 0)

	return Record{
		CustomerID:           fmt.Sprintf("CUST-%06d", g.sequence),
		Name:                 first + " " + last,
		Email:                fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), g.sequence),
		Phone:                fmt.Sprintf("+91-9%09d", g.rnd.Intn(1_000_000_000)),
		PropertyID:           fmt.Sprintf("PROP-%05d", g.rnd.Intn(90_000)+10_000),
		Region:               pickOne(g.rnd, regions),
		PropertyType:         pickOne(g.rnd, propertyTypes),
		PurchaseDate:         purchase.Format("02-01-2006"),
		MaintenanceDue:       due.Format("02-01-2006"),
		PaymentStatus:        pickOne(g.rnd, paymentStatuses),
		MaintenanceRequests:  int64(g.rnd.Intn(12)),
		SatisfactionScore:    round1(1 + g.rnd.Float64()*9),
		UtilitiesConsumption: round2(50 + g.rnd.Float64()*450),
		ReferralSource:       pickOne(g.rnd, referralSources),
		WarrantyClaims:       g.rnd.Intn(100) < 18,
		InsuranceStatus:      pickOne(g.rnd, insuranceStates),
	}
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
