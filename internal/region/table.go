package region

import (
	"sort"
)

// Table is an immutable set of monitored regions.
type Table struct {
	regions []Region
	index   map[string]int
}

// NewTable makes a Table from regions.
// The order of regions is normalized to ascending region code.
func NewTable(regions ...Region) Table {
	rs := make([]Region, len(regions))
	copy(rs, regions)
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].Code < rs[j].Code
	})

	idx := make(map[string]int, len(rs))
	for i, r := range rs {
		idx[r.Code] = i
	}

	return Table{
		regions: rs,
		index:   idx,
	}
}

// Lookup returns the region of the code.
func (t Table) Lookup(code string) (Region, bool) {
	i, ok := t.index[code]
	if !ok {
		return Region{}, false
	}
	return t.regions[i], true
}

// Regions returns a copy of the regions in the table.
func (t Table) Regions() []Region {
	rs := make([]Region, len(t.regions))
	copy(rs, t.regions)
	return rs
}

// Len returns the number of regions.
func (t Table) Len() int {
	return len(t.regions)
}

// Africa is the default set of monitored African data-centers.
var Africa = NewTable(
	Region{"ACC", "Accra, Ghana"},
	Region{"ALG", "Algiers, Algeria"},
	Region{"ABJ", "Abidjan, Ivory Coast"},
	Region{"AAE", "Annaba, Algeria"},
	Region{"ASK", "Yamoussoukro, Ivory Coast"},
	Region{"BGF", "Bangui, Central African Republic"},
	Region{"CAI", "Cairo, Egypt"},
	Region{"CPT", "Cape Town, South Africa"},
	Region{"CZL", "Constantine, Algeria"},
	Region{"DAR", "Dar Es Salaam, Tanzania"},
	Region{"DKR", "Dakar, Senegal"},
	Region{"DUR", "Durban, South Africa"},
	Region{"EBB", "Kampala, Uganda"},
	Region{"FIH", "Kinshasa, DR Congo"},
	Region{"GBE", "Gaborone, Botswana"},
	Region{"HRE", "Harare, Zimbabwe"},
	Region{"JIB", "Djibouti City, Djibouti"},
	Region{"JNB", "Johannesburg, South Africa"},
	Region{"KGL", "Kigali, Rwanda"},
	Region{"LAD", "Luanda, Angola"},
	Region{"LLW", "Lilongwe, Malawi"},
	Region{"LOS", "Lagos, Nigeria"},
	Region{"LUN", "Lusaka, Zambia"},
	Region{"MBA", "Mombasa, Kenya"},
	Region{"MPM", "Maputo, Mozambique"},
	Region{"MRU", "Port Louis, Mauritius"},
	Region{"NBO", "Nairobi, Kenya"},
	Region{"OUA", "Ouagadougou, Burkina Faso"},
	Region{"RUN", "Réunion, France"},
	Region{"TNR", "Antananarivo, Madagascar"},
	Region{"TUN", "Tunis, Tunisia"},
	Region{"WDH", "Windhoek, Namibia"},
	Region{"ADD", "Addis Ababa, Ethiopia"},
	Region{"CMN", "Casablanca, Morocco"},
	Region{"ORN", "Oran, Algeria"},
)
