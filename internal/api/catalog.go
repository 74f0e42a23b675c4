package api

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-order-console/internal/orders"
)

func (c *Client) CreateProduct(ctx context.Context, p orders.NewProduct) (orders.Product, error) {
	var w productWire
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/products",
		path:   "/products",
		in:     productWire{Name: p.Name, UnitPrice: num(p.UnitPrice)},
		out:    &w,
	})
	if err != nil {
		return orders.Product{}, err
	}
	return w.model(), nil
}

func (c *Client) ListProducts(ctx context.Context) ([]orders.Product, error) {
	var ws []productWire
	if err := c.do(ctx, call{method: http.MethodGet, route: "/products", path: "/products", out: &ws}); err != nil {
		return nil, err
	}
	return mapSlice(ws, productWire.model), nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (orders.Product, error) {
	var w productWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/products/{id}", path: path("products", id), out: &w})
	if err != nil {
		return orders.Product{}, err
	}
	return w.model(), nil
}

func (c *Client) CreateCustomer(ctx context.Context, cu orders.NewCustomer) (orders.Customer, error) {
	var w customerWire
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/customers",
		path:   "/customers",
		in:     customerWire{Name: cu.Name, Email: cu.Email},
		out:    &w,
	})
	if err != nil {
		return orders.Customer{}, err
	}
	return w.model(), nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (orders.Customer, error) {
	var w customerWire
	err := c.do(ctx, call{method: http.MethodGet, route: "/customers/{id}", path: path("customers", id), out: &w})
	if err != nil {
		return orders.Customer{}, err
	}
	return w.model(), nil
}
