package normalize

// countryCodes maps common country spellings to ISO 3166-1 alpha-2 codes.
// Input already in code form passes through untouched.
var countryCodes = map[string]string{
	"UNITED STATES":        "US",
	"USA":                  "US",
	"U.S.A.":               "US",
	"U.S.":                 "US",
	"CANADA":               "CA",
	"MEXICO":               "MX",
	"UNITED KINGDOM":       "GB",
	"UK":                   "GB",
	"GREAT BRITAIN":        "GB",
	"ENGLAND":              "GB",
	"SCOTLAND":             "GB",
	"WALES":                "GB",
	"NORTHERN IRELAND":     "GB",
	"FRANCE":               "FR",
	"GERMANY":              "DE",
	"ITALY":                "IT",
	"SPAIN":                "ES",
	"PORTUGAL":             "PT",
	"NETHERLANDS":          "NL",
	"BELGIUM":              "BE",
	"SWITZERLAND":          "CH",
	"AUSTRIA":              "AT",
	"SWEDEN":               "SE",
	"NORWAY":               "NO",
	"DENMARK":              "DK",
	"FINLAND":              "FI",
	"POLAND":               "PL",
	"CZECH REPUBLIC":       "CZ",
	"SLOVAKIA":             "SK",
	"HUNGARY":              "HU",
	"ROMANIA":              "RO",
	"BULGARIA":             "BG",
	"GREECE":               "GR",
	"TURKEY":               "TR",
	"RUSSIA":               "RU",
	"CHINA":                "CN",
	"JAPAN":                "JP",
	"KOREA":                "KR",
	"SOUTH KOREA":          "KR",
	"TAIWAN":               "TW",
	"HONG KONG":            "HK",
	"SINGAPORE":            "SG",
	"AUSTRALIA":            "AU",
	"NEW ZEALAND":          "NZ",
	"BRAZIL":               "BR",
	"ARGENTINA":            "AR",
	"CHILE":                "CL",
	"COLOMBIA":             "CO",
	"PERU":                 "PE",
	"VENEZUELA":            "VE",
	"SOUTH AFRICA":         "ZA",
	"EGYPT":                "EG",
	"ISRAEL":               "IL",
	"SAUDI ARABIA":         "SA",
	"UNITED ARAB EMIRATES": "AE",
	"UAE":                  "AE",
	"QATAR":                "QA",
	"KUWAIT":               "KW",
	"BAHRAIN":              "BH",
	"OMAN":                 "OM",
	"INDIA":                "IN",
	"PAKISTAN":             "PK",
	"BANGLADESH":           "BD",
	"SRI LANKA":            "LK",
	"MALAYSIA":             "MY",
	"INDONESIA":            "ID",
	"PHILIPPINES":          "PH",
	"THAILAND":             "TH",
	"VIETNAM":              "VN",
	"CAMBODIA":             "KH",
	"LAOS":                 "LA",
	"MYANMAR":              "MM",
	"BURMA":                "MM",
}

// usStates maps US state names to USPS two-letter codes.
var usStates = map[string]string{
	"ALABAMA":        "AL",
	"ALASKA":         "AK",
	"ARIZONA":        "AZ",
	"ARKANSAS":       "AR",
	"CALIFORNIA":     "CA",
	"COLORADO":       "CO",
	"CONNECTICUT":    "CT",
	"DELAWARE":       "DE",
	"FLORIDA":        "FL",
	"GEORGIA":        "GA",
	"HAWAII":         "HI",
	"IDAHO":          "ID",
	"ILLINOIS":       "IL",
	"INDIANA":        "IN",
	"IOWA":           "IA",
	"KANSAS":         "KS",
	"KENTUCKY":       "KY",
	"LOUISIANA":      "LA",
	"MAINE":          "ME",
	"MARYLAND":       "MD",
	"MASSACHUSETTS":  "MA",
	"MICHIGAN":       "MI",
	"MINNESOTA":      "MN",
	"MISSISSIPPI":    "MS",
	"MISSOURI":       "MO",
	"MONTANA":        "MT",
	"NEBRASKA":       "NE",
	"NEVADA":         "NV",
	"NEW HAMPSHIRE":  "NH",
	"NEW JERSEY":     "NJ",
	"NEW MEXICO":     "NM",
	"NEW YORK":       "NY",
	"NORTH CAROLINA": "NC",
	"NORTH DAKOTA":   "ND",
	"OHIO":           "OH",
	"OKLAHOMA":       "OK",
	"OREGON":         "OR",
	"PENNSYLVANIA":   "PA",
	"RHODE ISLAND":   "RI",
	"SOUTH CAROLINA": "SC",
	"SOUTH DAKOTA":   "SD",
	"TENNESSEE":      "TN",
	"TEXAS":          "TX",
	"UTAH":           "UT",
	"VERMONT":        "VT",
	"VIRGINIA":       "VA",
	"WASHINGTON":     "WA",
	"WEST VIRGINIA":  "WV",
	"WISCONSIN":      "WI",
	"WYOMING":        "WY",
}

// caProvinces maps Canadian province names, English and French, to the
// two-letter codes.
var caProvinces = map[string]string{
	"ALBERTA":                   "AB",
	"BRITISH COLUMBIA":          "BC",
	"MANITOBA":                  "MB",
	"NEW BRUNSWICK":             "NB",
	"NEWFOUNDLAND AND LABRADOR": "NL",
	"NORTHWEST TERRITORIES":     "NT",
	"NOVA SCOTIA":               "NS",
	"NUNAVUT":                   "NU",
	"ONTARIO":                   "ON",
	"PRINCE EDWARD ISLAND":      "PE",
	"QUEBEC":                    "QC",
	"SASKATCHEWAN":              "SK",
	"YUKON":                     "YT",
	"COLOMBIE-BRITANNIQUE":      "BC",
	"NOUVEAU-BRUNSWICK":         "NB",
	"TERRE-NEUVE-ET-LABRADOR":   "NL",
	"TERRITOIRES DU NORD-OUEST": "NT",
	"NOUVELLE-ÉCOSSE":           "NS",
	"ÎLE-DU-PRINCE-ÉDOUARD":     "PE",
	"QUÉBEC":                    "QC",
}
