package simplify

import (
	"github.com/ha1tch/provfig/pkg/province"
)

// StandardizeAbbreviations rewrites the abbreviation column (for example
// "Que." or "N.W.T.") to two letter codes and sets each province's acronym
// to match. Values that are not recognized are left alone. It returns the
// new dataset and how many values were changed.
func StandardizeAbbreviations(ds *province.Dataset, field string) (*province.Dataset, int, error) {
	changed := 0
	out, err := ds.Map(func(p province.Province) (province.Province, error) {
		v, ok := p.Attributes[field]
		if !ok {
			return p, nil
		}
		code, ok := province.AcronymForAbbreviation(v)
		if !ok {
			return p, nil
		}
		np := p
		np.Acronym = code
		if code != v {
			attrs := make(map[string]string, len(p.Attributes))
			for k, a := range p.Attributes {
				attrs[k] = a
			}
			attrs[field] = code
			np.Attributes = attrs
			changed++
		}
		return np, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, changed, nil
}
