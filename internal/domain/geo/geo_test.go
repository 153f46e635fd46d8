package geo_test

import (
	"testing"

	"github.com/datenight/planner/internal/domain/geo"
	"github.com/datenight/planner/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHaversineMiles(t *testing.T) {
	Convey("Given two coordinates", t, func() {
		Convey("When they are identical", func() {
			p := model.Coordinate{Lat: 34.05, Lng: -118.24}

			Convey("Then the distance is zero", func() {
				So(geo.HaversineMiles(p, p), ShouldEqual, 0)
			})
		})

		Convey("When they are Los Angeles and San Francisco", func() {
			la := model.Coordinate{Lat: 34.0522, Lng: -118.2437}
			sf := model.Coordinate{Lat: 37.7749, Lng: -122.4194}

			Convey("Then the distance is about 347 miles", func() {
				So(geo.HaversineMiles(la, sf), ShouldAlmostEqual, 347.4, 1.0)
			})

			Convey("And it is symmetric", func() {
				So(geo.HaversineMiles(la, sf), ShouldAlmostEqual, geo.HaversineMiles(sf, la), 1e-9)
			})
		})

		Convey("When one is a degree of latitude north of the other", func() {
			a := model.Coordinate{Lat: 10, Lng: 20}
			b := model.Coordinate{Lat: 11, Lng: 20}

			Convey("Then the distance equals MilesPerDegreeLat", func() {
				So(geo.HaversineMiles(a, b), ShouldAlmostEqual, geo.MilesPerDegreeLat, 1e-6)
			})
		})
	})
}

func TestUnitConversion(t *testing.T) {
	Convey("Given a distance in miles", t, func() {
		Convey("Then converting to meters and back is lossless", func() {
			So(geo.MilesToMeters(1), ShouldAlmostEqual, 1609.344, 1e-9)
			So(geo.MetersToMiles(geo.MilesToMeters(3.5)), ShouldAlmostEqual, 3.5, 1e-9)
		})
	})
}
