package httpapi

import "github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"

// Domain records keep their id out of the stored JSON; views put it back.

type ProductView struct {
	ID string `json:"id"`
	domain.Product
}

func productView(p domain.Product) ProductView {
	return ProductView{ID: p.ID, Product: p}
}

func productViews(ps []domain.Product) []ProductView {
	views := make([]ProductView, 0, len(ps))
	for _, p := range ps {
		views = append(views, productView(p))
	}
	return views
}

type UserView struct {
	ID string `json:"id"`
	domain.UserProfile
}

func userViews(us []domain.UserProfile) []UserView {
	views := make([]UserView, 0, len(us))
	for _, u := range us {
		views = append(views, UserView{ID: u.ID, UserProfile: u})
	}
	return views
}
