package servicetype

import (
	"github.com/parcelforge/shipping/pkg/shipping"
)

// aliases maps each carrier's canonical service codes to the spellings seen
// in merchant input. Keys are canonical wire codes; values are accepted
// aliases. Matching is case-insensitive and retried with punctuation
// stripped, so "FedEx 2-Day" and "FEDEX_2_DAY" both resolve.
var aliases = map[shipping.CarrierType]map[string][]string{
	shipping.CarrierFedEx: {
		"FEDEX_GROUND":                 {"GROUND", "FEDEX GROUND", "FG"},
		"GROUND_HOME_DELIVERY":         {"HOME DELIVERY", "HOME_DELIVERY", "GROUND HOME DELIVERY"},
		"FEDEX_EXPRESS_SAVER":          {"EXPRESS SAVER", "FEDEX EXPRESS SAVER", "ECONOMY"},
		"FEDEX_2_DAY":                  {"2 DAY", "2DAY", "FEDEX 2DAY", "TWO DAY"},
		"FEDEX_2_DAY_AM":               {"2 DAY AM", "2DAY AM", "FEDEX 2DAY AM"},
		"STANDARD_OVERNIGHT":           {"STANDARD OVERNIGHT", "OVERNIGHT"},
		"PRIORITY_OVERNIGHT":           {"PRIORITY OVERNIGHT"},
		"FIRST_OVERNIGHT":              {"FIRST OVERNIGHT"},
		"FEDEX_INTERNATIONAL_PRIORITY": {"INTERNATIONAL PRIORITY", "INTERNATIONAL_PRIORITY", "IP"},
		"INTERNATIONAL_ECONOMY":        {"INTERNATIONAL ECONOMY", "IE"},
		"INTERNATIONAL_FIRST":          {"INTERNATIONAL FIRST"},
		"INTERNATIONAL_GROUND":         {"INTERNATIONAL GROUND"},
		"SMART_POST":                   {"SMARTPOST", "SMART POST", "GROUND_ECONOMY", "FEDEX GROUND ECONOMY"},
		"FEDEX_FREIGHT_PRIORITY":       {"FREIGHT PRIORITY"},
		"FEDEX_FREIGHT_ECONOMY":        {"FREIGHT ECONOMY"},
		"INTERNATIONAL_PRIORITY_FREIGHT": {"INTERNATIONAL FREIGHT PRIORITY"},
		"INTERNATIONAL_ECONOMY_FREIGHT":  {"INTERNATIONAL FREIGHT ECONOMY"},
	},
	shipping.CarrierUPS: {
		"GROUND":                 {"UPS GROUND", "03"},
		"THREE_DAY_SELECT":       {"3 DAY SELECT", "UPS 3 DAY SELECT", "12"},
		"SECOND_DAY_AIR":         {"2ND DAY AIR", "SECOND DAY AIR", "UPS 2ND DAY AIR", "02"},
		"SECOND_DAY_AIR_AM":      {"2ND DAY AIR AM", "UPS 2ND DAY AIR AM", "59"},
		"NEXT_DAY_AIR_SAVER":     {"NEXT DAY AIR SAVER", "UPS NEXT DAY AIR SAVER", "13"},
		"NEXT_DAY_AIR":           {"NEXT DAY AIR", "UPS NEXT DAY AIR", "01"},
		"NEXT_DAY_AIR_EARLY":     {"NEXT DAY AIR EARLY", "NEXT DAY AIR EARLY AM", "14"},
		"STANDARD":               {"UPS STANDARD", "11"},
		"WORLDWIDE_EXPEDITED":    {"WORLDWIDE EXPEDITED", "UPS WORLDWIDE EXPEDITED", "08"},
		"WORLDWIDE_EXPRESS":      {"WORLDWIDE EXPRESS", "UPS WORLDWIDE EXPRESS", "07"},
		"WORLDWIDE_SAVER":        {"WORLDWIDE EXPRESS SAVER", "WORLDWIDE SAVER", "SAVER", "65"},
		"WORLDWIDE_EXPRESS_PLUS": {"WORLDWIDE EXPRESS PLUS", "54"},
	},
}

// domesticToInternational maps each domestic service to its closest
// international equivalent when a shipment crosses the home-country border.
var domesticToInternational = map[shipping.CarrierType]map[string]string{
	shipping.CarrierFedEx: {
		"FEDEX_GROUND":         "INTERNATIONAL_GROUND",
		"GROUND_HOME_DELIVERY": "INTERNATIONAL_GROUND",
		"SMART_POST":           "INTERNATIONAL_GROUND",
		"FEDEX_EXPRESS_SAVER":  "INTERNATIONAL_ECONOMY",
		"FEDEX_2_DAY":          "INTERNATIONAL_ECONOMY",
		"FEDEX_2_DAY_AM":       "FEDEX_INTERNATIONAL_PRIORITY",
		"STANDARD_OVERNIGHT":   "FEDEX_INTERNATIONAL_PRIORITY",
		"PRIORITY_OVERNIGHT":   "FEDEX_INTERNATIONAL_PRIORITY",
		"FIRST_OVERNIGHT":      "INTERNATIONAL_FIRST",
	},
	shipping.CarrierUPS: {
		"GROUND":             "WORLDWIDE_EXPEDITED",
		"THREE_DAY_SELECT":   "WORLDWIDE_EXPEDITED",
		"SECOND_DAY_AIR":     "WORLDWIDE_EXPEDITED",
		"SECOND_DAY_AIR_AM":  "WORLDWIDE_EXPEDITED",
		"NEXT_DAY_AIR_SAVER": "WORLDWIDE_SAVER",
		"NEXT_DAY_AIR":       "WORLDWIDE_EXPRESS",
		"NEXT_DAY_AIR_EARLY": "WORLDWIDE_EXPRESS_PLUS",
	},
}

// internationalToDomestic is the reverse substitution for shipments that
// stay inside the home country.
var internationalToDomestic = map[shipping.CarrierType]map[string]string{
	shipping.CarrierFedEx: {
		"INTERNATIONAL_GROUND":          "FEDEX_GROUND",
		"INTERNATIONAL_ECONOMY":         "FEDEX_EXPRESS_SAVER",
		"FEDEX_INTERNATIONAL_PRIORITY":  "PRIORITY_OVERNIGHT",
		"INTERNATIONAL_FIRST":           "FIRST_OVERNIGHT",
		"INTERNATIONAL_ECONOMY_FREIGHT": "FEDEX_FREIGHT_ECONOMY",
	},
	shipping.CarrierUPS: {
		"WORLDWIDE_EXPEDITED":    "GROUND",
		"WORLDWIDE_EXPRESS":      "NEXT_DAY_AIR",
		"WORLDWIDE_SAVER":        "NEXT_DAY_AIR_SAVER",
		"WORLDWIDE_EXPRESS_PLUS": "NEXT_DAY_AIR_EARLY",
		"STANDARD":               "GROUND",
	},
}

// internationalServices is the set of codes each carrier accepts for a
// cross-border shipment.
var internationalServices = map[shipping.CarrierType]map[string]bool{
	shipping.CarrierFedEx: {
		"FEDEX_INTERNATIONAL_PRIORITY":   true,
		"INTERNATIONAL_ECONOMY":          true,
		"INTERNATIONAL_FIRST":            true,
		"INTERNATIONAL_GROUND":           true,
		"INTERNATIONAL_PRIORITY_FREIGHT": true,
		"INTERNATIONAL_ECONOMY_FREIGHT":  true,
	},
	shipping.CarrierUPS: {
		"WORLDWIDE_EXPRESS":      true,
		"WORLDWIDE_EXPEDITED":    true,
		"WORLDWIDE_SAVER":        true,
		"WORLDWIDE_EXPRESS_PLUS": true,
		"STANDARD":               true,
	},
}
