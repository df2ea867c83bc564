package generator

import "fmt"

// Fallback scaffold content, emitted when an agent's reply cannot be decoded
// into a file map. The scaffolds keep a download usable even when a model
// reply degrades into prose.

func basicSpringBootApp(packageName string) string {
	return fmt.Sprintf(`package %s;

import org.springframework.boot.SpringApplication;
import org.springframework.boot.autoconfigure.SpringBootApplication;

@SpringBootApplication
public class Application {
    public static void main(String[] args) {
        SpringApplication.run(Application.class, args);
    }
}
`, packageName)
}

const basicApplicationProperties = `server.port=8080
spring.datasource.url=jdbc:h2:mem:testdb
spring.datasource.driver-class-name=org.h2.Driver
spring.jpa.hibernate.ddl-auto=create-drop
spring.h2.console.enabled=true
`

const basicPomXML = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
    <modelVersion>4.0.0</modelVersion>
    <parent>
        <groupId>org.springframework.boot</groupId>
        <artifactId>spring-boot-starter-parent</artifactId>
        <version>3.2.0</version>
    </parent>
    <groupId>com.generated</groupId>
    <artifactId>app</artifactId>
    <version>1.0.0</version>
    <dependencies>
        <dependency>
            <groupId>org.springframework.boot</groupId>
            <artifactId>spring-boot-starter-web</artifactId>
        </dependency>
        <dependency>
            <groupId>org.springframework.boot</groupId>
            <artifactId>spring-boot-starter-data-jpa</artifactId>
        </dependency>
        <dependency>
            <groupId>com.h2database</groupId>
            <artifactId>h2</artifactId>
            <scope>runtime</scope>
        </dependency>
    </dependencies>
</project>
`

const basicAngularComponent = `import { Component } from '@angular/core';

@Component({
  selector: 'app-root',
  templateUrl: './app.component.html',
  styleUrls: ['./app.component.css']
})
export class AppComponent {
  title = 'Generated App';
}
`

const basicAngularTemplate = `<div>
  <h1>{{ title }}</h1>
  <p>Welcome to your generated application!</p>
</div>
`

const basicAngularMain = `import { platformBrowserDynamic } from '@angular/platform-browser-dynamic';
import { AppModule } from './app/app.module';

platformBrowserDynamic().bootstrapModule(AppModule)
  .catch(err => console.error(err));
`

const basicPackageJSON = `{
  "name": "generated-app",
  "version": "1.0.0",
  "dependencies": {
    "@angular/core": "^17.0.0",
    "@angular/common": "^17.0.0",
    "@angular/platform-browser": "^17.0.0"
  },
  "scripts": {
    "start": "ng serve",
    "build": "ng build"
  }
}
`

const basicBackendDockerfile = `FROM openjdk:17-jdk-slim
COPY target/*.jar app.jar
EXPOSE 8080
ENTRYPOINT ["java", "-jar", "/app.jar"]
`

const basicFrontendDockerfile = `FROM node:18-alpine AS build
WORKDIR /app
COPY package*.json ./
RUN npm install
COPY . .
RUN npm run build

FROM nginx:alpine
COPY --from=build /app/dist/* /usr/share/nginx/html/
`

const basicDockerCompose = `version: '3.8'
services:
  backend:
    build: .
    ports:
      - "8080:8080"
  frontend:
    build: ./frontend
    ports:
      - "80:80"
`

const basicReadme = "# Generated Project\n\n" +
	"This project was generated by the AI Project Generator.\n\n" +
	"## Getting Started\n\n" +
	"### Backend\n```bash\nmvn spring-boot:run\n```\n\n" +
	"### Frontend\n```bash\nnpm install\nng serve\n```\n"

const backendSetupDoc = "# Backend Setup Instructions\n\n" +
	"## Prerequisites\n" +
	"- Java 17 or higher\n" +
	"- Maven 3.6+\n" +
	"- PostgreSQL 15+ (or H2 for development)\n\n" +
	"## Installation\n```bash\n" +
	"# Build the project\nmvn clean compile\n\n" +
	"# Run tests\nmvn test\n\n" +
	"# Start the application\nmvn spring-boot:run\n```\n\n" +
	"## Dependencies\n" +
	"This project uses the following key dependencies:\n" +
	"- Spring Boot 3.2.0\n" +
	"- Spring Data JPA\n" +
	"- Spring Web\n" +
	"- PostgreSQL Driver\n" +
	"- H2 Database (for development)\n" +
	"- Spring Boot Validation\n\n" +
	"## Configuration\n" +
	"Update application.properties with your database settings.\n\n" +
	"## API Documentation\n" +
	"Once running, access the application at: http://localhost:8080\n"

const frontendSetupDoc = "# Frontend Setup Instructions\n\n" +
	"## Prerequisites\n" +
	"- Node.js 18+\n" +
	"- npm 9+\n" +
	"- Angular CLI\n\n" +
	"## Installation\n```bash\n" +
	"# Install Angular CLI globally\nnpm install -g @angular/cli\n\n" +
	"# Install project dependencies\nnpm install\n\n" +
	"# Start development server\nng serve\n```\n\n" +
	"## Dependencies\n" +
	"This project uses Angular 17 with Material UI.\n\n" +
	"## Access\n" +
	"Development server: http://localhost:4200\n"
