// internal/capability/a000.go
package capability

import (
	"fmt"

	"github.com/guiperry/garminlink/internal/schema"
)

var productDataSchema = mustSchema("ProductData",
	schema.FieldSpec{Name: "product_id", Format: "H"},
	schema.FieldSpec{Name: "software_version", Format: "h"},
	schema.FieldSpec{Name: "product_description", Format: "n"},
)

func mustSchema(name string, fields ...schema.FieldSpec) *schema.Schema {
	s, err := schema.NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeProductData unpacks the pid_product_data payload into a
// ProductData. The wire value of software_version is the real version
// multiplied by 100.
func DecodeProductData(data []byte) (ProductData, error) {
	rec, err := schema.Unpack(productDataSchema, data)
	if err != nil {
		return ProductData{}, fmt.Errorf("decode product data: %w", err)
	}
	productID := rec.MustGet("product_id").(uint16)
	rawVersion := rec.MustGet("software_version").(int16)
	description := rec.MustGet("product_description").(string)
	return ProductData{
		ProductID:          productID,
		SoftwareVersion:    float32(rawVersion) / 100,
		ProductDescription: description,
	}, nil
}
