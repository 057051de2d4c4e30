package deals

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cardsnipe/engine/internal/models"
)

// Fixed roster the offline generator draws from. The shape of the output is
// deterministic (len(roster) players x listingsPerPlayer listings); only the
// content is randomized.
var sampleRoster = []struct {
	Name  string
	Team  string
	Sport models.Sport
}{
	{"LeBron James", "Lakers", models.SportBasketball},
	{"Victor Wembanyama", "Spurs", models.SportBasketball},
	{"Luka Doncic", "Mavericks", models.SportBasketball},
	{"Anthony Edwards", "Timberwolves", models.SportBasketball},
	{"Shohei Ohtani", "Dodgers", models.SportBaseball},
	{"Julio Rodriguez", "Mariners", models.SportBaseball},
	{"Gunnar Henderson", "Orioles", models.SportBaseball},
}

var (
	sampleSets   = []string{"Prizm", "Optic", "Select", "Topps Chrome", "Bowman"}
	sampleGrades = []string{"Raw", "PSA 9", "PSA 10", "BGS 9.5"}
	sampleYears  = []string{"2022", "2023", "2024"}
)

const listingsPerPlayer = 3

// Generator synthesizes a self-contained listing set for offline operation.
// It never touches the network.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator backed by rnd. Passing nil gets a
// time-seeded source; tests pass a fixed seed for reproducible output.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Listings synthesizes three candidate listings per roster player and returns
// them sorted by deal score descending, generation order preserved on ties.
func (g *Generator) Listings(now time.Time) []models.Listing {
	listings := make([]models.Listing, 0, len(sampleRoster)*listingsPerPlayer)

	for _, player := range sampleRoster {
		for i := 0; i < listingsPerPlayer; i++ {
			grade := sampleGrades[g.rnd.Intn(len(sampleGrades))]
			year := sampleYears[g.rnd.Intn(len(sampleYears))]
			cardSet := sampleSets[g.rnd.Intn(len(sampleSets))]
			isAuction := g.rnd.Float64() < 0.5

			baseValue := float64(g.rnd.Intn(400) + 50)
			if grade == "PSA 10" {
				baseValue *= 2.5
			}

			discount := g.rnd.Float64()*0.4 + 0.1
			currentPrice := math.Floor(baseValue * (1 - discount))
			marketValue := math.Floor(baseValue)

			listing := models.Listing{
				ID:           uuid.New().String(),
				Sport:        player.Sport,
				Title:        fmt.Sprintf("%s %s %s #%d %s", year, cardSet, player.Name, g.rnd.Intn(300), grade),
				Player:       player.Name,
				Year:         year,
				CardSet:      cardSet,
				Grade:        grade,
				IsAuction:    isAuction,
				CurrentPrice: currentPrice,
				MarketValue:  marketValue,
				DealScore:    models.ComputeDealScore(currentPrice, marketValue),
				Platform:     "eBay",
				SellerRating: 98 + g.rnd.Float64()*2,
			}

			if isAuction {
				endTime := now.Add(time.Duration(g.rnd.Float64() * 24 * float64(time.Hour)))
				listing.AuctionEndTime = &endTime
				listing.BidCount = g.rnd.Intn(20)
			}

			listings = append(listings, listing)
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].DealScore > listings[j].DealScore
	})

	return listings
}
