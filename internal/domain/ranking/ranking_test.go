package ranking_test

import (
	"fmt"
	"testing"

	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func scored(id string, rating float64, price int, uniq float64) model.ScoredVenue {
	return model.ScoredVenue{
		Venue:           model.Venue{ID: id, Rating: rating, PriceLevel: price},
		UniquenessScore: uniq,
	}
}

func ids(items []model.ScoredVenue) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func activities(n int) []model.ScoredVenue {
	out := make([]model.ScoredVenue, 0, n)
	for i := 0; i < n; i++ {
		// Ratings are spaced wider than the band so the sort order is total.
		out = append(out, model.ScoredVenue{
			Venue:           model.Venue{ID: fmt.Sprintf("a%02d", i), Rating: 5.0 - float64(i)*0.25},
			UniquenessScore: 1.0,
		})
	}
	return out
}

func TestOrderRestaurants(t *testing.T) {
	Convey("Given scored restaurants", t, func() {
		o := ranking.NewOrderer()
		in := []model.ScoredVenue{
			scored("cheap-top", 4.7, 1, 1.0),
			scored("pricey-close", 4.5, 4, 1.0),
			scored("low", 4.0, 4, 3.0),
			scored("pricey-unique", 4.6, 4, 2.5),
		}

		Convey("When no seed or surprise is given", func() {
			out := o.Order(model.SearchRestaurants, in, nil, false)

			Convey("Then ratings within 0.3 fall through to price then uniqueness", func() {
				So(ids(out), ShouldResemble, []string{"pricey-unique", "pricey-close", "cheap-top", "low"})
			})

			Convey("And the input is left untouched", func() {
				So(in[0].ID, ShouldEqual, "cheap-top")
			})
		})
	})
}

func TestOrderActivities(t *testing.T) {
	Convey("Given scored activities with close ratings", t, func() {
		o := ranking.NewOrderer()
		mk := func(id string, rating, dw, uniq, dist float64) model.ScoredVenue {
			return model.ScoredVenue{
				Venue:           model.Venue{ID: id, Rating: rating, Distance: dist},
				UniquenessScore: uniq,
				DateWorthiness:  dw,
			}
		}
		in := []model.ScoredVenue{
			mk("far", 4.5, 70, 1.5, 3.0),
			mk("near", 4.5, 72, 1.5, 1.0),
			mk("dull", 4.6, 50, 2.0, 0.5),
			mk("unique", 4.4, 68, 2.5, 9.0),
			mk("bad", 3.9, 99, 3.0, 0.1),
		}

		out := o.Order(model.SearchActivities, in, nil, false)

		Convey("Then date-worthiness, uniqueness and distance break rating ties", func() {
			So(ids(out), ShouldResemble, []string{"unique", "near", "far", "dull", "bad"})
		})
	})
}

func TestShuffle(t *testing.T) {
	Convey("Given 20 sorted activities", t, func() {
		o := ranking.NewOrderer()
		in := activities(20)

		Convey("When ordered twice with the same seed", func() {
			seed := int64(42)
			a := o.Order(model.SearchActivities, in, &seed, false)
			b := o.Order(model.SearchActivities, in, &seed, false)

			Convey("Then the order is identical", func() {
				So(ids(a), ShouldResemble, ids(b))
			})

			Convey("And it differs from the sorted order", func() {
				So(ids(a), ShouldNotResemble, ids(o.Order(model.SearchActivities, in, nil, false)))
			})

			Convey("And no venue is lost or duplicated", func() {
				seen := map[string]bool{}
				for _, id := range ids(a) {
					seen[id] = true
				}
				So(len(seen), ShouldEqual, 20)
			})
		})

		Convey("When ordered with different seeds", func() {
			s1, s2 := int64(1), int64(2)
			a := o.Order(model.SearchActivities, in, &s1, false)
			b := o.Order(model.SearchActivities, in, &s2, false)

			Convey("Then the orders differ", func() {
				So(ids(a), ShouldNotResemble, ids(b))
			})
		})

		Convey("When shuffling a single item", func() {
			one := []int{7}
			ranking.Shuffle(one, 3)

			Convey("Then nothing changes", func() {
				So(one, ShouldResemble, []int{7})
			})
		})
	})
}

func TestSurprise(t *testing.T) {
	Convey("Given 30 scored activities", t, func() {
		o := ranking.NewOrderer()
		in := activities(30)
		sorted := o.Order(model.SearchActivities, in, nil, false)

		Convey("When surprise is requested with a seed", func() {
			seed := int64(99)
			out := o.Order(model.SearchActivities, in, &seed, true)

			Convey("Then the top 15 of the sorted order are returned unshuffled", func() {
				So(len(out), ShouldEqual, 15)
				So(ids(out), ShouldResemble, ids(sorted[:15]))
			})
		})

		Convey("When fewer items than the limit are given", func() {
			out := o.Order(model.SearchActivities, in[:4], nil, true)

			Convey("Then all are returned", func() {
				So(len(out), ShouldEqual, 4)
			})
		})

		Convey("When a custom limit is configured", func() {
			out := ranking.NewOrderer(ranking.WithSurpriseLimit(5)).Order(model.SearchActivities, in, nil, true)

			Convey("Then it is honored", func() {
				So(len(out), ShouldEqual, 5)
			})
		})
	})
}

func TestExclude(t *testing.T) {
	Convey("Given an exclusion set", t, func() {
		in := []model.Venue{{ID: "id1"}, {ID: "id2"}, {ID: "id3"}}

		Convey("When id1 was previously shown", func() {
			out, n := ranking.Exclude(in, []string{"id1"})

			Convey("Then it is removed and counted", func() {
				So(n, ShouldEqual, 1)
				So(len(out), ShouldEqual, 2)
				So(out[0].ID, ShouldEqual, "id2")
			})
		})

		Convey("When the set is empty", func() {
			out, n := ranking.Exclude(in, nil)

			Convey("Then nothing is removed", func() {
				So(n, ShouldEqual, 0)
				So(len(out), ShouldEqual, 3)
			})
		})
	})
}

func TestPreferCity(t *testing.T) {
	Convey("Given venues in several cities", t, func() {
		in := []model.Venue{
			{ID: "1", Address: "1 Main St, Pasadena, CA"},
			{ID: "2", Address: "2 Sunset Blvd, Los Angeles, CA"},
			{ID: "3", Address: "3 Colorado Blvd, Pasadena, CA"},
			{ID: "4", Address: "4 Spring St, Los Angeles, CA"},
		}

		Convey("Then target city matches move forward in stable order", func() {
			out := ranking.PreferCity(in, "los angeles")
			So(len(out), ShouldEqual, 4)
			So(out[0].ID, ShouldEqual, "2")
			So(out[1].ID, ShouldEqual, "4")
			So(out[2].ID, ShouldEqual, "1")
			So(out[3].ID, ShouldEqual, "3")
		})

		Convey("Then an empty city leaves the order alone", func() {
			So(ranking.PreferCity(in, " "), ShouldResemble, in)
		})
	})
}

func TestSortByRating(t *testing.T) {
	Convey("Given merged restaurants", t, func() {
		in := []model.Venue{{ID: "a", Rating: 4.1}, {ID: "b", Rating: 4.8}, {ID: "c", Rating: 4.1}}
		ranking.SortByRating(in)

		Convey("Then they are ordered by rating with stable ties", func() {
			So(in[0].ID, ShouldEqual, "b")
			So(in[1].ID, ShouldEqual, "a")
			So(in[2].ID, ShouldEqual, "c")
		})
	})
}
