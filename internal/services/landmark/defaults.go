package landmark

import (
	"strings"

	"news-atlas/internal/services/geocode"
)

type defaultSet map[string]Landmark

func lm(name string, lat, lng float64) Landmark {
	return Landmark{Name: name, Location: geocode.Coordinates{Lat: lat, Lng: lng}}
}

// countryDefaults are the well-known landmarks used when search finds nothing,
// keyed by ISO 3166-1 alpha-2 code and category.
var countryDefaults = map[string]defaultSet{
	"US": {
		CategoryFinance:   lm("New York Stock Exchange, New York, NY, USA", 40.7069, -74.0113),
		CategoryPolitical: lm("United States Capitol, Washington, DC, USA", 38.8899, -77.0091),
		CategoryGeneral:   lm("Statue of Liberty, New York, NY, USA", 40.6892, -74.0445),
	},
	"GB": {
		CategoryFinance:   lm("Bank of England, London, United Kingdom", 51.5142, -0.0885),
		CategoryPolitical: lm("Palace of Westminster, London, United Kingdom", 51.4995, -0.1248),
		CategoryGeneral:   lm("Trafalgar Square, London, United Kingdom", 51.5080, -0.1281),
	},
	"FR": {
		CategoryFinance:   lm("Banque de France, Paris, France", 48.8643, 2.3383),
		CategoryPolitical: lm("Élysée Palace, Paris, France", 48.8704, 2.3167),
		CategoryGeneral:   lm("Eiffel Tower, Paris, France", 48.8584, 2.2945),
	},
	"DE": {
		CategoryFinance:   lm("Frankfurt Stock Exchange, Frankfurt, Germany", 50.1152, 8.6786),
		CategoryPolitical: lm("Reichstag Building, Berlin, Germany", 52.5186, 13.3762),
		CategoryGeneral:   lm("Brandenburg Gate, Berlin, Germany", 52.5163, 13.3777),
	},
	"JP": {
		CategoryFinance:   lm("Tokyo Stock Exchange, Tokyo, Japan", 35.6829, 139.7790),
		CategoryPolitical: lm("National Diet Building, Tokyo, Japan", 35.6759, 139.7450),
		CategoryGeneral:   lm("Tokyo Tower, Tokyo, Japan", 35.6586, 139.7454),
	},
	"CN": {
		CategoryFinance:   lm("People's Bank of China, Beijing, China", 39.9095, 116.3553),
		CategoryPolitical: lm("Great Hall of the People, Beijing, China", 39.9033, 116.3874),
		CategoryGeneral:   lm("Forbidden City, Beijing, China", 39.9163, 116.3972),
	},
	"RU": {
		CategoryFinance:   lm("Bank of Russia, Moscow, Russia", 55.7597, 37.6311),
		CategoryPolitical: lm("Moscow Kremlin, Moscow, Russia", 55.7520, 37.6175),
		CategoryGeneral:   lm("Red Square, Moscow, Russia", 55.7539, 37.6208),
	},
	"IN": {
		CategoryFinance:   lm("Bombay Stock Exchange, Mumbai, India", 18.9292, 72.8332),
		CategoryPolitical: lm("Parliament House, New Delhi, India", 28.6175, 77.2082),
		CategoryGeneral:   lm("India Gate, New Delhi, India", 28.6129, 77.2295),
	},
	"BR": {
		CategoryFinance:   lm("B3 Stock Exchange, São Paulo, Brazil", -23.5460, -46.6340),
		CategoryPolitical: lm("National Congress of Brazil, Brasília, Brazil", -15.7997, -47.8641),
		CategoryGeneral:   lm("Christ the Redeemer, Rio de Janeiro, Brazil", -22.9519, -43.2105),
	},
	"CA": {
		CategoryFinance:   lm("Toronto Stock Exchange, Toronto, Canada", 43.6480, -79.3850),
		CategoryPolitical: lm("Parliament Hill, Ottawa, Canada", 45.4236, -75.7009),
		CategoryGeneral:   lm("CN Tower, Toronto, Canada", 43.6426, -79.3871),
	},
	"AU": {
		CategoryFinance:   lm("Australian Securities Exchange, Sydney, Australia", -33.8651, 151.2099),
		CategoryPolitical: lm("Parliament House, Canberra, Australia", -35.3082, 149.1244),
		CategoryGeneral:   lm("Sydney Opera House, Sydney, Australia", -33.8568, 151.2153),
	},
	"BE": {
		CategoryFinance:   lm("National Bank of Belgium, Brussels, Belgium", 50.8481, 4.3571),
		CategoryPolitical: lm("Berlaymont Building, Brussels, Belgium", 50.8434, 4.3826),
		CategoryGeneral:   lm("Atomium, Brussels, Belgium", 50.8949, 4.3415),
	},
	"CH": {
		CategoryFinance:   lm("SIX Swiss Exchange, Zurich, Switzerland", 47.3717, 8.5298),
		CategoryPolitical: lm("Federal Palace, Bern, Switzerland", 46.9466, 7.4443),
		CategoryGeneral:   lm("Palais des Nations, Geneva, Switzerland", 46.2266, 6.1404),
	},
	"IT": {
		CategoryFinance:   lm("Borsa Italiana, Milan, Italy", 45.4647, 9.1866),
		CategoryPolitical: lm("Palazzo Chigi, Rome, Italy", 41.9010, 12.4799),
		CategoryGeneral:   lm("Colosseum, Rome, Italy", 41.8902, 12.4922),
	},
	"ES": {
		CategoryFinance:   lm("Bank of Spain, Madrid, Spain", 40.4188, -3.6945),
		CategoryPolitical: lm("Congress of Deputies, Madrid, Spain", 40.4163, -3.6966),
		CategoryGeneral:   lm("Royal Palace of Madrid, Madrid, Spain", 40.4180, -3.7143),
	},
	"KR": {
		CategoryFinance:   lm("Bank of Korea, Seoul, South Korea", 37.5600, 126.9813),
		CategoryPolitical: lm("National Assembly Proceeding Hall, Seoul, South Korea", 37.5318, 126.9140),
		CategoryGeneral:   lm("Gyeongbokgung Palace, Seoul, South Korea", 37.5796, 126.9770),
	},
	"SA": {
		CategoryFinance:   lm("Saudi Exchange, Riyadh, Saudi Arabia", 24.7627, 46.6406),
		CategoryPolitical: lm("Al Yamamah Palace, Riyadh, Saudi Arabia", 24.6650, 46.6710),
		CategoryGeneral:   lm("Kingdom Centre, Riyadh, Saudi Arabia", 24.7114, 46.6744),
	},
	"AE": {
		CategoryFinance:   lm("Dubai Financial Market, Dubai, United Arab Emirates", 25.2247, 55.2838),
		CategoryPolitical: lm("Qasr Al Watan, Abu Dhabi, United Arab Emirates", 24.4618, 54.3058),
		CategoryGeneral:   lm("Burj Khalifa, Dubai, United Arab Emirates", 25.1972, 55.2744),
	},
}

var countryAliases = map[string]string{
	"united states": "US", "united states of america": "US", "usa": "US", "us": "US", "u.s.": "US", "america": "US",
	"united kingdom": "GB", "uk": "GB", "u.k.": "GB", "britain": "GB", "great britain": "GB", "england": "GB", "scotland": "GB", "wales": "GB",
	"france": "FR", "germany": "DE", "japan": "JP", "china": "CN", "russia": "RU", "russian federation": "RU",
	"india": "IN", "brazil": "BR", "canada": "CA", "australia": "AU", "belgium": "BE", "switzerland": "CH",
	"italy": "IT", "spain": "ES", "south korea": "KR", "korea": "KR", "republic of korea": "KR",
	"saudi arabia": "SA", "united arab emirates": "AE", "uae": "AE",
	// Sub-national names that imply a country on their own.
	"texas": "US", "california": "US", "florida": "US", "new york": "US", "illinois": "US", "washington": "US",
	"ohio": "US", "pennsylvania": "US", "georgia": "US", "michigan": "US", "arizona": "US", "nevada": "US",
	"colorado": "US", "massachusetts": "US", "north dakota": "US", "oklahoma": "US", "louisiana": "US", "alaska": "US",
	"ontario": "CA", "quebec": "CA", "alberta": "CA", "british columbia": "CA",
	"bavaria": "DE", "hesse": "DE", "catalonia": "ES", "lombardy": "IT",
	"london": "GB", "paris": "FR", "berlin": "DE", "frankfurt": "DE", "tokyo": "JP", "beijing": "CN", "shanghai": "CN",
	"moscow": "RU", "mumbai": "IN", "new delhi": "IN", "brussels": "BE", "zurich": "CH", "geneva": "CH",
	"rome": "IT", "milan": "IT", "madrid": "ES", "seoul": "KR", "riyadh": "SA", "dubai": "AE", "abu dhabi": "AE",
	"toronto": "CA", "ottawa": "CA", "sydney": "AU", "canberra": "AU", "sao paulo": "BR", "são paulo": "BR",
}

// CountryOf guesses an ISO country code from a location string by checking
// its comma segments from last to first.
func CountryOf(area string) (string, bool) {
	parts := strings.Split(area, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		key := strings.ToLower(strings.TrimSpace(parts[i]))
		if code, ok := countryAliases[key]; ok {
			return code, true
		}
		if upper := strings.ToUpper(key); len(upper) == 2 {
			if _, ok := countryDefaults[upper]; ok {
				return upper, true
			}
		}
	}
	return "", false
}

// CountryDefault returns the default landmark for a country and category,
// falling back to the country's general landmark.
func CountryDefault(countryCode, category string) (*Landmark, bool) {
	set, ok := countryDefaults[strings.ToUpper(countryCode)]
	if !ok {
		return nil, false
	}
	l, ok := set[NormalizeCategory(category)]
	if !ok {
		l = set[CategoryGeneral]
	}
	return &l, true
}
