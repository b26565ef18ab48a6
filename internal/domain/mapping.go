package domain

import (
	"fmt"
	"time"
)

// ProductFromRow maps a validated row onto a Product. Rows come from
// the validator with coerced types, so a mismatch here means the schema
// and the mapping drifted apart.
func ProductFromRow(row map[string]any) (Product, error) {
	p := Product{}
	var err error
	if p.ProductID, err = stringField(row, "productid"); err != nil {
		return Product{}, err
	}
	if p.Name, err = stringField(row, "name"); err != nil {
		return Product{}, err
	}
	if p.Quantity, err = intField(row, "quantity"); err != nil {
		return Product{}, err
	}
	if p.Category, err = stringField(row, "category"); err != nil {
		return Product{}, err
	}
	if p.Subcategory, err = stringField(row, "subcategory"); err != nil {
		return Product{}, err
	}
	return p, nil
}

// OrderFromRow maps a validated row onto an Order.
func OrderFromRow(row map[string]any) (Order, error) {
	o := Order{}
	var err error
	if o.OrderID, err = stringField(row, "orderid"); err != nil {
		return Order{}, err
	}
	if o.ProductID, err = stringField(row, "productid"); err != nil {
		return Order{}, err
	}
	if o.Currency, err = stringField(row, "currency"); err != nil {
		return Order{}, err
	}
	if o.Quantity, err = intField(row, "quantity"); err != nil {
		return Order{}, err
	}
	if o.ShippingCost, err = floatField(row, "shippingcost"); err != nil {
		return Order{}, err
	}
	if o.Amount, err = floatField(row, "amount"); err != nil {
		return Order{}, err
	}
	if o.Channel, err = stringField(row, "channel"); err != nil {
		return Order{}, err
	}
	if o.ChannelGroup, err = stringField(row, "channelgroup"); err != nil {
		return Order{}, err
	}
	if campaign, ok := row["campaign"].(string); ok && campaign != "" {
		o.Campaign = &campaign
	}
	if o.OrderDateTime, err = timeField(row, "datetime"); err != nil {
		return Order{}, err
	}
	return o, nil
}

func stringField(row map[string]any, name string) (string, error) {
	v, ok := row[name].(string)
	if !ok {
		return "", fmt.Errorf("field %s: expected string, got %T", name, row[name])
	}
	return v, nil
}

func intField(row map[string]any, name string) (int64, error) {
	v, ok := row[name].(int64)
	if !ok {
		return 0, fmt.Errorf("field %s: expected integer, got %T", name, row[name])
	}
	return v, nil
}

func floatField(row map[string]any, name string) (float64, error) {
	switch v := row[name].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("field %s: expected number, got %T", name, row[name])
}

func timeField(row map[string]any, name string) (time.Time, error) {
	v, ok := row[name].(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("field %s: expected timestamp, got %T", name, row[name])
	}
	return v, nil
}
