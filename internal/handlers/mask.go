package handlers

import "rayenna-crm/internal/models"

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := string(runes[:atIdx])
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return prefix + "***" + domain
	}
	return string(runes[0:2]) + "***" + domain
}

func maskPhone(phone string) string {
	runes := []rune(phone)
	n := len(runes)
	if n <= 4 {
		return "***"
	}
	masked := make([]rune, n)
	for i := range runes {
		if i >= n-2 {
			masked[i] = runes[i]
		} else {
			masked[i] = '*'
		}
	}
	return string(masked)
}

// canSeeContacts reports whether role may read customer contact details
// unmasked.
func canSeeContacts(role models.UserRole) bool {
	return role == models.RoleAdmin || role == models.RoleSales
}

func maskCustomer(cu *models.Customer) {
	if cu.ContactEmail != "" {
		cu.ContactEmail = maskEmail(cu.ContactEmail)
	}
	if cu.ContactPhone != "" {
		cu.ContactPhone = maskPhone(cu.ContactPhone)
	}
}
