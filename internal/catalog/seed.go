package catalog

// Default returns the built-in menu snapshot. Used when the service
// runs without a database; the migrations seed the same data.
func Default() *StaticRegistry {
	return NewStaticRegistry(
		[]Category{
			{ID: "pizza", Name: "Пицца"},
			{ID: "burgers", Name: "Бургеры"},
			{ID: "sushi", Name: "Суши"},
			{ID: "salads", Name: "Салаты"},
			{ID: "desserts", Name: "Десерты"},
			{ID: "drinks", Name: "Напитки"},
		},
		[]Entry{
			{Product: "Пепперони", CategoryID: "pizza"},
			{Product: "Маргарита", CategoryID: "pizza"},
			{Product: "Четыре сыра", CategoryID: "pizza"},
			{Product: "Классический бургер", CategoryID: "burgers"},
			{Product: "Чикен бургер", CategoryID: "burgers"},
			{Product: "Двойной бургер", CategoryID: "burgers"},
			{Product: "Филадельфия", CategoryID: "sushi"},
			{Product: "Калифорния", CategoryID: "sushi"},
			{Product: "Дракон", CategoryID: "sushi"},
			{Product: "Цезарь", CategoryID: "salads"},
			{Product: "Греческий", CategoryID: "salads"},
			{Product: "Тирамису", CategoryID: "desserts"},
			{Product: "Чизкейк", CategoryID: "desserts"},
			{Product: "Кола", CategoryID: "drinks"},
			{Product: "Свежевыжатый сок", CategoryID: "drinks"},
		},
	)
}
