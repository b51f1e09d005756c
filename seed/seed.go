// Package seed loads the demo marketplace: five users, a product catalog
// across every category, two open carts and three past orders.
package seed

import (
	"context"
	"fmt"

	"ecofinds/models"
	"ecofinds/store"
	"ecofinds/utils"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// Summary counts what Run inserted.
type Summary struct {
	Users    int
	Products int
	Carts    int
	Orders   int
}

type userSeed struct {
	username string
	email    string
	phone    string
	address  models.Address
}

var users = []userSeed{
	{"john_doe", "john@example.com", "+1234567890", models.Address{Street: "123 Main St", City: "New York", State: "NY", ZipCode: "10001", Country: "USA"}},
	{"jane_smith", "jane@example.com", "+1234567891", models.Address{Street: "456 Oak Ave", City: "Los Angeles", State: "CA", ZipCode: "90001", Country: "USA"}},
	{"mike_wilson", "mike@example.com", "+1234567892", models.Address{Street: "789 Pine Rd", City: "Chicago", State: "IL", ZipCode: "60601", Country: "USA"}},
	{"sarah_johnson", "sarah@example.com", "+1234567893", models.Address{Street: "321 Elm St", City: "Houston", State: "TX", ZipCode: "77001", Country: "USA"}},
	{"demo_user", "demo@example.com", "+1234567894", models.Address{Street: "555 Demo St", City: "San Francisco", State: "CA", ZipCode: "94102", Country: "USA"}},
}

type productSeed struct {
	seller     int
	title      string
	desc       string
	price      float64
	category   string
	condition  string
	image      string
	views      int64
	brand      string
	avgRating  float64
	numReviews int
}

func unsplash(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=400"
}

var products = []productSeed{
	{0, "iPhone 12 Pro - Like New", "Barely used iPhone 12 Pro with 256GB storage. Comes with original box and accessories. No scratches, excellent condition.", 699, "Electronics", "Like New", unsplash("1603921326210-6edd2d60ca68"), 145, "Apple", 4.8, 24},
	{1, "MacBook Air M1 2020", "8GB RAM, 256GB SSD. Perfect working condition. Includes charger and case.", 850, "Electronics", "Good", unsplash("1517336714731-489689fd1ca8"), 203, "Apple", 4.9, 15},
	{2, "Sony WH-1000XM4 Headphones", "Premium noise-cancelling headphones. Works perfectly, minor wear on ear pads.", 180, "Electronics", "Good", unsplash("1618366712010-f4ae9c647dcb"), 89, "Sony", 4.7, 320},
	{3, "iPad Pro 11-inch 2021", "128GB WiFi model with Apple Pencil 2nd gen. Excellent condition with screen protector.", 650, "Electronics", "Like New", unsplash("1544244015-0df4b3ffc6b0"), 167, "", 0, 0},
	{0, "Solid Wood Dining Table", "Beautiful oak dining table seats 6 people. Well maintained, just moving to smaller place.", 250, "Furniture", "Good", unsplash("1615066390971-03e4e1c36ddf"), 76, "Generic", 4.2, 8},
	{1, "IKEA Leather Sofa", "3-seater brown leather sofa. Comfortable and stylish. Non-smoking home.", 320, "Furniture", "Good", unsplash("1555041469-a586c61ea9bc"), 112, "", 0, 0},
	{2, "Modern Office Desk", "Spacious white desk with cable management. Perfect for home office setup.", 120, "Furniture", "Good", unsplash("1518455027359-f3f8164ba6bd"), 94, "", 0, 0},
	{3, "Nike Air Jordan 1 Retro", "Size 10 US. Gently worn, authentic sneakers. Cleaned and ready to wear.", 160, "Clothing", "Good", unsplash("1542291026-7eec264c27ff"), 201, "Nike", 4.6, 54},
	{0, "Winter Coat - North Face", "Men's large, black winter jacket. Warm and waterproof, barely used.", 90, "Clothing", "Like New", unsplash("1551028719-00167b16eac5"), 67, "", 0, 0},
	{1, "Designer Handbag - Michael Kors", "Authentic leather handbag in excellent condition. Comes with dust bag.", 180, "Clothing", "Like New", unsplash("1584917865442-de89df76afd3"), 143, "", 0, 0},
	{2, "Programming Book Collection", "Set of 5 programming books including JavaScript, Python, and React. All in great condition.", 45, "Books", "Good", unsplash("1495446815901-a7297e633e8d"), 55, "", 0, 0},
	{3, "Harry Potter Complete Series", "All 7 books in hardcover. Well maintained, great for collectors.", 85, "Books", "Good", unsplash("1512820790803-83ca734da794"), 98, "", 0, 0},
	{0, "Mountain Bike - Trek", "26-inch wheels, 21-speed. Perfect for trails. Recently serviced.", 280, "Sports", "Good", unsplash("1576435728678-68d0fbf94e91"), 134, "", 0, 0},
	{1, "Yoga Mat Set with Blocks", "High-quality yoga mat with two blocks and carrying strap. Barely used.", 35, "Sports", "Like New", unsplash("1601925260368-ae2f83cf8b7f"), 42, "", 0, 0},
	{2, "Dumbbell Set 5-50 lbs", "Complete adjustable dumbbell set. Perfect for home gym.", 220, "Sports", "Good", unsplash("1517836357463-d25dfeac3438"), 78, "", 0, 0},
	{3, "Coffee Maker - Nespresso", "Vertuo model with milk frother. Works perfectly, includes cleaning kit.", 95, "Home & Garden", "Good", unsplash("1517668808822-9ebb02f2a0e6"), 89, "", 0, 0},
	{0, "Garden Tool Set", "Complete set of gardening tools including spade, rake, and pruners.", 40, "Home & Garden", "Good", unsplash("1416879595882-3373a0480b5b"), 34, "", 0, 0},
	{1, "Instant Pot 6 Quart", "Multi-functional pressure cooker. Barely used, includes recipe book.", 65, "Home & Garden", "Like New", unsplash("1585515320310-259814833e62"), 71, "", 0, 0},
	{2, "PlayStation 5 Console", "Disc version with two controllers. Perfect condition, includes box.", 450, "Toys", "Like New", unsplash("1606813907291-d86efa9b94db"), 289, "", 0, 0},
	{3, "LEGO Star Wars Millennium Falcon", "Complete set with all pieces and manual. Already assembled, can disassemble if needed.", 120, "Toys", "Good", unsplash("1587654780291-39c9404d746b"), 156, "", 0, 0},
	{0, "Board Game Collection", "5 popular board games: Catan, Ticket to Ride, Pandemic, Carcassonne, and Codenames.", 75, "Toys", "Good", unsplash("1610890716171-6b1bb98ffd09"), 63, "", 0, 0},
	{1, "Canon EOS Rebel T7 Camera", "DSLR camera with 18-55mm lens. Includes bag, memory card, and extra battery.", 380, "Other", "Good", unsplash("1516035069371-29a1b244cc32"), 178, "", 0, 0},
	{2, "Electric Guitar - Fender Stratocaster", "Mexican-made Strat with amp and accessories. Great for beginners.", 420, "Other", "Good", unsplash("1510915361894-db8b60106cb1"), 145, "", 0, 0},
	{3, "Pet Carrier for Small Dogs/Cats", "Airline-approved carrier. Clean and in excellent condition.", 30, "Other", "Good", unsplash("1548199973-03cce0bbc87b"), 41, "", 0, 0},
}

// carts maps a user index to the product indexes in their cart.
var carts = []struct {
	user     int
	products []int
}{
	{0, []int{1, 7}},
	{1, []int{3}},
}

var orders = []struct {
	user     int
	products []int
	status   models.OrderStatus
}{
	{2, []int{2}, models.OrderCompleted},
	{3, []int{10, 13}, models.OrderCompleted},
	{0, []int{15}, models.OrderPending},
}

// Run inserts the demo data into st. It does not clear existing documents;
// seeding twice fails on the unique user indexes.
func Run(ctx context.Context, st store.Store) (*Summary, error) {
	hash, err := utils.HashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}

	created := make([]models.User, 0, len(users))
	for _, u := range users {
		user := models.User{
			Username: u.username,
			Email:    u.email,
			Password: hash,
			Phone:    u.phone,
			Address:  u.address,
		}
		if err := st.Users.Create(ctx, &user); err != nil {
			return nil, fmt.Errorf("creating user %s: %w", u.username, err)
		}
		created = append(created, user)
	}

	listed := make([]models.Product, 0, len(products))
	for _, p := range products {
		brand := p.brand
		if brand == "" {
			brand = models.DefaultBrand
		}
		product := models.Product{
			Title:       p.title,
			Description: p.desc,
			Price:       p.price,
			Category:    p.category,
			Condition:   p.condition,
			Images:      []string{p.image},
			Status:      models.ProductAvailable,
			Views:       p.views,
			Brand:       brand,
			AvgRating:   p.avgRating,
			NumReviews:  p.numReviews,
			SellerID:    created[p.seller].ID,
		}
		if err := st.Products.Create(ctx, &product); err != nil {
			return nil, fmt.Errorf("creating product %q: %w", p.title, err)
		}
		listed = append(listed, product)
	}

	for _, c := range carts {
		cart := models.Cart{UserID: created[c.user].ID}
		for _, idx := range c.products {
			cart.Items = append(cart.Items, models.CartItem{ProductID: listed[idx].ID, Quantity: 1})
		}
		if err := st.Carts.Create(ctx, &cart); err != nil {
			return nil, fmt.Errorf("creating cart for %s: %w", created[c.user].Username, err)
		}
	}

	for _, o := range orders {
		buyer := created[o.user]
		order := models.Order{
			UserID:          buyer.ID,
			Status:          o.status,
			PaymentMethod:   models.DefaultPaymentMethod,
			ShippingAddress: buyer.Address,
		}
		for _, idx := range o.products {
			p := listed[idx]
			order.Items = append(order.Items, models.OrderItem{
				ProductID: p.ID,
				Title:     p.Title,
				Price:     p.Price,
				Quantity:  1,
				Image:     p.FirstImage(),
			})
			order.TotalAmount += p.Price
		}
		if err := st.Orders.Create(ctx, &order); err != nil {
			return nil, fmt.Errorf("creating order for %s: %w", buyer.Username, err)
		}
		for _, item := range order.Items {
			if err := st.Products.SetStatus(ctx, item.ProductID, models.ProductSold); err != nil {
				return nil, fmt.Errorf("marking %q sold: %w", item.Title, err)
			}
		}
	}

	return &Summary{
		Users:    len(created),
		Products: len(listed),
		Carts:    len(carts),
		Orders:   len(orders),
	}, nil
}
