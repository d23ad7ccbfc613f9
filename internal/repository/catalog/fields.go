package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/lotscout/lotscout/internal/db"
	"github.com/lotscout/lotscout/internal/domain"
)

// Hash field names. The tag/numeric/text names double as index attribute
// identifiers, so they must stay valid FT identifiers.
const (
	fieldID             = "id"
	fieldTitle          = "title"
	fieldPrice          = "price"
	fieldMileage        = "mileage"
	fieldLocation       = "location"
	fieldImageURL       = "image_url"
	fieldMarketplaceURL = "marketplace_url"
	fieldSource         = "source"
	fieldMake           = "make"
	fieldModel          = "model"
	fieldBodyType       = "body_type"
	fieldYear           = "year"
	fieldPostedAt       = "posted_at"
	fieldSearchText     = "search_text"
	fieldEmbedded       = "embedded"
	fieldEmbedding      = "embedding"
)

// vehicleFields flattens a vehicle into its hash representation. search_text
// is a precomputed lowercase concatenation of the substring-searchable
// columns so text queries stay case-insensitive.
func vehicleFields(v *domain.Vehicle) map[string]string {
	fields := map[string]string{
		fieldID:             v.ID,
		fieldTitle:          v.Title,
		fieldPrice:          strconv.FormatFloat(v.Price, 'f', -1, 64),
		fieldMileage:        v.Mileage,
		fieldLocation:       v.Location,
		fieldImageURL:       v.ImageURL,
		fieldMarketplaceURL: v.MarketplaceURL,
		fieldSource:         v.Source,
		fieldMake:           v.Make,
		fieldModel:          v.Model,
		fieldBodyType:       v.BodyType,
		fieldPostedAt:       strconv.FormatInt(v.PostedAt.Unix(), 10),
		fieldSearchText:     searchText(v),
	}
	if v.Year != nil {
		fields[fieldYear] = strconv.Itoa(*v.Year)
	}
	return fields
}

func searchText(v *domain.Vehicle) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{v.Title, v.Make, v.Model} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func parseVehicle(id string, fields map[string]string) domain.Vehicle {
	v := domain.Vehicle{
		ID:             id,
		Title:          fields[fieldTitle],
		Mileage:        fields[fieldMileage],
		Location:       fields[fieldLocation],
		ImageURL:       fields[fieldImageURL],
		MarketplaceURL: fields[fieldMarketplaceURL],
		Source:         fields[fieldSource],
		Make:           fields[fieldMake],
		Model:          fields[fieldModel],
		BodyType:       fields[fieldBodyType],
	}
	if raw := fields[fieldID]; raw != "" {
		v.ID = raw
	}
	if raw := fields[fieldPrice]; raw != "" {
		if p, err := strconv.ParseFloat(raw, 64); err == nil {
			v.Price = p
		}
	}
	if raw := fields[fieldYear]; raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			v.Year = &y
		}
	}
	if raw := fields[fieldPostedAt]; raw != "" {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v.PostedAt = time.Unix(ts, 0).UTC()
		}
	}
	if raw := fields[fieldEmbedding]; raw != "" {
		v.Embedding = db.DecodeVector(raw)
	}
	return v
}
