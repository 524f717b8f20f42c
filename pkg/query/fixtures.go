package query

// Fixtures returns the seed dataset served by the in-memory backend. The
// signed-in identity owns a provider profile so every flow has data to show.
func Fixtures(identityID string) Dataset {
	const (
		cleanHomeID = "provider-cleanhome"
		joaoID      = "client-joao"
		mariaID     = "client-maria"
		adminID     = "admin-1"
	)

	return Dataset{
		TableCategories: {
			category("haircuts", "Cortes de Cabelo", "scissors", "Serviços profissionais de corte e penteado"),
			category("cleaning", "Limpeza Doméstica", "home", "Serviços de limpeza e manutenção residencial"),
			category("plumbing", "Canalização", "user", "Reparo e instalação de canalização"),
			category("electrical", "Electricidade", "users", "Reparo e instalação elétrica"),
			category("tutoring", "Explicações", "calendar", "Explicações académicas e de competências"),
			category("events", "Eventos", "clock", "Planejamento e coordenação de eventos"),
			category("delivery", "Entrega", "shoppingBag", "Serviços de entrega e recolha"),
			category("repairs", "Reparos Domésticos", "home", "Reparos gerais e manutenção residencial"),
		},
		TableProfiles: {
			{"id": identityID, "first_name": "Carlos", "last_name": "Mendes", "avatar_url": "", "phone": "+244923456789", "address": "Rua Rainha Ginga, Luanda", "role": "provider", "created_at": "2025-01-10T09:00:00Z", "updated_at": "2025-01-10T09:00:00Z"},
			{"id": cleanHomeID, "first_name": "Helena", "last_name": "Costa", "avatar_url": "", "phone": "+244912345678", "address": "Talatona, Luanda", "role": "provider", "created_at": "2025-02-03T10:30:00Z", "updated_at": "2025-02-03T10:30:00Z"},
			{"id": joaoID, "first_name": "João", "last_name": "Silva", "avatar_url": "", "phone": "+244934567890", "address": "Maianga, Luanda", "role": "client", "created_at": "2025-03-15T14:00:00Z", "updated_at": "2025-03-15T14:00:00Z"},
			{"id": mariaID, "first_name": "Maria", "last_name": "Santos", "avatar_url": "", "phone": "+244945678901", "address": "Benguela", "role": "client", "created_at": "2025-04-22T08:45:00Z", "updated_at": "2025-04-22T08:45:00Z"},
			{"id": adminID, "first_name": "Pedro", "last_name": "Neto", "avatar_url": "", "phone": "", "address": "Lubango", "role": "admin", "created_at": "2024-12-01T12:00:00Z", "updated_at": "2024-12-01T12:00:00Z"},
		},
		TableProviderDetails: {
			{"id": identityID, "business_name": "Urban Cuts Luanda", "bio": "Barbearia e cabeleireiro no centro de Luanda.", "expertise": "Cortes, barba, penteados"},
			{"id": cleanHomeID, "business_name": "CleanHome Services", "bio": "Limpeza residencial e de escritórios.", "expertise": "Limpeza profunda"},
		},
		TableServices: {
			service("1", "Corte de Cabelo Premium", "Urban Cuts Luanda", identityID, "haircuts", 5000, 4.8, 124, "photo-1581591524425-c7e0978865fc"),
			service("2", "Limpeza Completa de Casa", "CleanHome Services", cleanHomeID, "cleaning", 8500, 4.7, 98, "photo-1721322800607-8c38375eef04"),
			service("3", "Reparo de Canalização", "Fast Fix Plumbing", identityID, "plumbing", 6000, 4.5, 67, "photo-1575998733749-16a657403d5e"),
			service("4", "Serviços Elétricos", "PowerPro Angola", cleanHomeID, "electrical", 7500, 4.6, 52, "photo-1558618666-16639628875b"),
			service("5", "Explicações de Matemática", "Excelência Académica", identityID, "tutoring", 4000, 4.9, 38, "photo-1590402494682-cd3fb53b1f70"),
			service("6", "Planejamento de Eventos", "Celebration Events", cleanHomeID, "events", 15000, 4.7, 29, "photo-1561489413-985b06da5bee"),
			service("7", "Entrega Expressa", "Swift Delivery Angola", cleanHomeID, "delivery", 3000, 4.6, 112, "photo-1581091226825-a6a2a5aee158"),
			service("8", "Reparos Gerais para Casa", "Handy Solutions", cleanHomeID, "repairs", 9000, 4.4, 43, "photo-1613323593608-abc90fec84ff"),
		},
		TableBookings: {
			booking("booking-1", joaoID, "1", identityID, "2026-11-10", "10:00", "confirmed", "2026-10-01T09:00:00Z"),
			booking("booking-2", identityID, "2", cleanHomeID, "2026-11-12", "14:30", "pending", "2026-10-02T11:15:00Z"),
			booking("booking-3", mariaID, "1", identityID, "2025-03-02", "09:00", "completed", "2025-02-20T16:40:00Z"),
			booking("booking-4", identityID, "4", cleanHomeID, "2025-05-20", "16:00", "cancelled", "2025-05-01T13:05:00Z"),
			booking("booking-5", joaoID, "3", identityID, "2025-12-01", "11:30", "confirmed", "2025-11-18T10:20:00Z"),
			booking("booking-6", mariaID, "5", identityID, "2026-12-05", "15:00", "pending", "2026-10-10T18:00:00Z"),
		},
		TableReviews: {
			{"id": "review-1", "service_id": "1", "user_id": mariaID, "rating": float64(5), "comment": "Excelente atendimento, recomendo.", "created_at": "2025-03-03T10:00:00Z"},
			{"id": "review-2", "service_id": "2", "user_id": identityID, "rating": float64(4), "comment": "Casa impecável, chegaram a horas.", "created_at": "2025-06-01T09:30:00Z"},
			{"id": "review-3", "service_id": "3", "user_id": joaoID, "rating": float64(5), "comment": "Resolveu a fuga rapidamente.", "created_at": "2025-12-02T08:00:00Z"},
		},
	}
}

func category(id, title, icon, description string) Row {
	return Row{
		"id":          id,
		"title":       title,
		"icon_name":   icon,
		"description": description,
		"href":        "/services/" + id,
	}
}

func service(id, title, providerName, providerID, categoryID string, price, rating, reviews float64, photo string) Row {
	return Row{
		"id":            id,
		"title":         title,
		"description":   title + " por " + providerName + ".",
		"provider_id":   providerID,
		"provider_name": providerName,
		"price":         price,
		"category_id":   categoryID,
		"location":      "Luanda",
		"duration":      float64(1),
		"image_url":     "https://images.unsplash.com/" + photo + "?auto=format&fit=crop&w=800&q=80",
		"rating":        rating,
		"review_count":  reviews,
		"created_at":    "2025-01-15T12:00:00Z",
	}
}

func booking(id, userID, serviceID, providerID, date, at, status, createdAt string) Row {
	return Row{
		"id":           id,
		"user_id":      userID,
		"service_id":   serviceID,
		"provider_id":  providerID,
		"booking_date": date,
		"booking_time": at,
		"status":       status,
		"notes":        "",
		"created_at":   createdAt,
	}
}
