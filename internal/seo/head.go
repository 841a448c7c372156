package seo

import (
	"encoding/json"
	"html/template"
	"strings"

	"qancha/internal/models"
)

const (
	DefaultTitle       = "Qancha.uz - Kerak narxni shu yerdan toping!"
	DefaultDescription = "Your trusted marketplace for buying and selling products in Uzbekistan. Find the best deals and connect with sellers near you."
	DefaultKeywords    = "marketplace, uzbekistan, online shopping, buy, sell, products, qancha, tashkent"

	ogImageWidth  = 1200
	ogImageHeight = 630
	locale        = "uz_UZ"
	currency      = "UZS"
)

// Site holds the site-wide values every head tag set is built from.
type Site struct {
	Name         string
	URL          string
	DefaultImage string
	TwitterSite  string
}

type PriceTags struct {
	Amount       string
	Currency     string
	Availability string
}

// HeadTags is everything that goes between <head> and </head> for one page.
type HeadTags struct {
	Title       string
	Description string
	Keywords    string
	URL         string
	Image       string
	ImageAlt    string
	ImageWidth  int
	ImageHeight int
	Type        string
	SiteName    string
	Locale      string
	TwitterSite string
	Price       *PriceTags
	JSONLD      template.JS
}

// BuildHeadTags returns the head tags for a product page, or the site
// defaults when product is nil. It is the only place page metadata is
// decided.
func BuildHeadTags(site Site, product *models.Product) HeadTags {
	if product == nil {
		return defaultHeadTags(site)
	}

	title := product.Name + " - " + site.Name
	description := title
	if product.HasPriceRange() {
		description = product.Name + " - Narxi: " + PriceRange(product.LowestPrice, product.HighestPrice)
	}

	image := site.absolute(product.Image)
	if image == "" {
		image = site.absolute(site.DefaultImage)
	}
	pageURL := site.URL + "/product/" + product.ID.Hex()

	tags := HeadTags{
		Title:       title,
		Description: description,
		Keywords:    productKeywords(product),
		URL:         pageURL,
		Image:       image,
		ImageAlt:    product.Name,
		ImageWidth:  ogImageWidth,
		ImageHeight: ogImageHeight,
		Type:        "product",
		SiteName:    site.Name,
		Locale:      locale,
		TwitterSite: site.TwitterSite,
		Price: &PriceTags{
			Currency:     currency,
			Availability: "in stock",
		},
	}
	if product.LowestPrice > 0 {
		tags.Price.Amount = FormatAmount(product.LowestPrice)
	}
	tags.JSONLD = productJSONLD(product, description, image, pageURL)
	return tags
}

func defaultHeadTags(site Site) HeadTags {
	return HeadTags{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Keywords:    DefaultKeywords,
		URL:         site.URL + "/",
		Image:       site.absolute(site.DefaultImage),
		ImageAlt:    site.Name,
		ImageWidth:  ogImageWidth,
		ImageHeight: ogImageHeight,
		Type:        "website",
		SiteName:    site.Name,
		Locale:      locale,
		TwitterSite: site.TwitterSite,
		JSONLD: marshalJSONLD(map[string]any{
			"@context":    "https://schema.org",
			"@type":       "WebSite",
			"name":        site.Name,
			"url":         site.URL + "/",
			"description": DefaultDescription,
		}),
	}
}

// absolute turns a site-relative path such as /uploads/x.png into a full URL;
// crawlers ignore relative og:image values.
func (s Site) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return s.URL + ref
	}
	return ref
}

func productKeywords(product *models.Product) string {
	parts := []string{product.Name}
	if product.Type != "" {
		parts = append(parts, string(product.Type))
	}
	parts = append(parts, "qancha.uz", "narx", "price")
	return strings.Join(parts, ", ")
}

// FormatAmount renders a machine-readable price without grouping.
func FormatAmount(value float64) string {
	return strings.ReplaceAll(FormatPrice(value), ",", "")
}

func productJSONLD(product *models.Product, description, image, pageURL string) template.JS {
	doc := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        product.Name,
		"description": description,
		"image":       image,
		"url":         pageURL,
	}
	if product.Type != "" {
		doc["category"] = string(product.Type)
	}
	if product.HasPriceRange() {
		doc["offers"] = map[string]any{
			"@type":         "AggregateOffer",
			"lowPrice":      product.LowestPrice,
			"highPrice":     product.HighestPrice,
			"priceCurrency": currency,
			"availability":  "https://schema.org/InStock",
		}
	}
	return marshalJSONLD(doc)
}

func marshalJSONLD(doc map[string]any) template.JS {
	// json.Marshal escapes <, > and &, so the output cannot close the script element.
	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return template.JS(data)
}
