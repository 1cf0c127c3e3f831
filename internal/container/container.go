package container

import (
	app "crop-breed-bot/internal/application"
	"crop-breed-bot/internal/domain/port"
)

type Container struct {
	UserService  *app.UserService
	BreedService *app.BreedService
}

func New(userRepo port.UserRepository, results port.ResultStore, decoder port.ImageDecoder, generator port.BreedGenerator) *Container {
	userService := app.NewUserService(userRepo)
	breedService := app.NewBreedService(userService, decoder, generator, results)

	return &Container{
		UserService:  userService,
		BreedService: breedService,
	}
}
